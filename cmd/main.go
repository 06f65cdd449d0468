/*
Copyright 2025 Dealdesk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dealdeskhq/dealdesk"
	"github.com/dealdeskhq/dealdesk/config"
	"github.com/dealdeskhq/dealdesk/database"
	"github.com/dealdeskhq/dealdesk/internal/notification"
)

// Dealdesk represents the CLI application, encapsulating the root Cobra command.
type Dealdesk struct {
	cmd *cobra.Command
}

// dealdeskInstance holds the service instance and its configuration so
// subcommands share one initialized runtime.
type dealdeskInstance struct {
	dealdesk *dealdesk.Dealdesk
	cnf      *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the service before any
// subcommand executes.
func preRun(app *dealdeskInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("dealdesk.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newDealdesk, err := setupDealdesk(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.dealdesk = newDealdesk
		app.cnf = cnf

		return nil
	}
}

func setupDealdesk(cfg *config.Configuration) (*dealdesk.Dealdesk, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newDealdesk, err := dealdesk.NewDealdesk(db)
	if err != nil {
		return nil, fmt.Errorf("error creating dealdesk: %v", err)
	}
	return newDealdesk, nil
}

// NewCLI creates the command-line interface for the Dealdesk application.
func NewCLI() *Dealdesk {
	var configFile string
	d := &dealdeskInstance{}

	var rootCmd = &cobra.Command{
		Use:   "dealdesk",
		Short: "Deal approval pipeline engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./dealdesk.json", "Configuration file for dealdesk")

	rootCmd.PersistentPreRunE = preRun(d)

	rootCmd.AddCommand(serverCommands(d))
	rootCmd.AddCommand(workerCommands(d))
	rootCmd.AddCommand(migrateCommands(d))
	rootCmd.AddCommand(configCommands())

	return &Dealdesk{cmd: rootCmd}
}

func (w Dealdesk) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
