package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dealdeskhq/dealdesk"
	"github.com/dealdeskhq/dealdesk/api/middleware"
	"github.com/dealdeskhq/dealdesk/config"
	"github.com/dealdeskhq/dealdesk/internal/apierror"
)

type Api struct {
	dealdesk *dealdesk.Dealdesk
	router   *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/deals", a.CreateDeal)
	router.GET("/deals", a.GetAllDeals)
	router.GET("/deals/:id", a.GetDeal)
	router.PUT("/deals/:id", a.UpdateDealCommercials)

	router.POST("/deals/:id/approvals", a.SubmitForApproval)
	router.GET("/deals/:id/approvals", a.GetRequirements)
	router.GET("/deals/:id/pipeline", a.GetPipelineStatus)

	router.POST("/approvals/:id/approve", a.ApproveRequirement)
	router.POST("/approvals/:id/request-revision", a.RequestRevision)
	router.POST("/approvals/:id/reset", a.ResetForRevision)

	return a.router
}

func NewAPI(d *dealdesk.Dealdesk) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware("dealdesk"))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{dealdesk: d, router: r}
}

// handleError renders a service error with the right status code. Errors the
// service has not classified fall back to 500.
func handleError(c *gin.Context, err error) {
	if apiErr, ok := err.(apierror.APIError); ok {
		c.JSON(apierror.MapErrorToHTTPStatus(apiErr), apiErr)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
