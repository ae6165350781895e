package handlers

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/metrics"
	"github.com/justsurfingit/hirepath/internal/pricing"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"github.com/justsurfingit/hirepath/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies wires the services behind the API. LLM and Billing are nil
// when their integration is not configured.
type Dependencies struct {
	DB           *gorm.DB
	Guard        *rbac.Guard
	Auth         *services.AuthService
	Candidates   *services.CandidateService
	Roles        *services.RoleService
	Packs        *services.PackService
	Onboarding   *services.OnboardingService
	Jobs         *services.JobService
	CoverLetters *services.CoverLetterService
	Documents    *services.DocumentService
	LLM          *services.LLMService
	Billing      *pricing.Billing
	CORSOrigins  []string
	Log          *slog.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Log), metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	if len(d.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.CORSOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterRoutes(r.Group("/api/v1"), d)
	return r
}

func RegisterRoutes(api *gin.RouterGroup, d Dependencies) {
	g := d.Guard
	health := &HealthHandler{DB: d.DB, Log: d.Log}
	auth := NewAuthHandler(d.Auth, d.Log)
	candidates := NewCandidateHandler(d.Candidates, d.Log)
	roles := NewRoleHandler(d.Roles, d.Log)
	packs := NewPackHandler(d.Packs, d.Log)
	billing := NewBillingHandler(d.Billing, d.Log)
	onboarding := NewOnboardingHandler(d.Onboarding, d.Log)
	jobs := NewJobHandler(d.LLM, d.Jobs, d.Log)
	letters := NewCoverLetterHandler(d.CoverLetters, d.Log)
	docs := NewDocumentHandler(d.Documents, d.Log)

	api.GET("/health", health.Check)
	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)
	api.GET("/packs", packs.List)
	api.GET("/packs/:id", packs.Get)
	api.POST("/billing/webhook", billing.Webhook)

	authed := api.Group("", g.Authenticate())
	authed.GET("/me", auth.Me)
	authed.POST("/billing/checkout", billing.Checkout)
	authed.GET("/onboarding", onboarding.Current)
	authed.POST("/onboarding/answers", onboarding.SubmitAnswers)

	authed.GET("/candidates", g.RequirePermission("candidates:read"), candidates.List)
	authed.GET("/candidates/:id", g.RequirePermission("candidates:read"), candidates.Get)
	authed.POST("/candidates", g.RequirePermission("candidates:write"), candidates.Create)
	authed.PUT("/candidates/:id", g.RequirePermission("candidates:write"), candidates.Update)
	authed.DELETE("/candidates/:id", g.RequirePermission("candidates:delete"), candidates.Delete)

	authed.GET("/roles", g.RequirePermission("roles:read"), roles.ListRoles)
	authed.GET("/roles/:id", g.RequirePermission("roles:read"), roles.GetRole)
	authed.GET("/permissions", g.RequirePermission("roles:read"), roles.ListPermissions)
	authed.PUT("/users/:id/role", g.RequirePermission("roles:write"), roles.AssignRole)

	jobsGroup := authed.Group("/jobs", g.RequireModule(services.JobsModule))
	jobsGroup.POST("/extract", g.RequirePermission("jobs:write"), jobs.ParseJob)
	jobsGroup.POST("", g.RequirePermission("jobs:write"), jobs.CreateJob)
	jobsGroup.GET("", g.RequirePermission("jobs:read"), jobs.ListJobs)
	jobsGroup.PATCH("/:id/status", g.RequirePermission("jobs:write"), jobs.UpdateStatus)
	jobsGroup.GET("/:id/events", g.RequirePermission("jobs:read"), jobs.Events)

	lettersGroup := authed.Group("/cover-letters", g.RequireModule(services.CoverLettersModule))
	lettersGroup.POST("", g.RequirePermission("cover_letters:write"), letters.Generate)
	lettersGroup.GET("", g.RequirePermission("cover_letters:read"), letters.List)

	docsGroup := authed.Group("/documents", g.RequireModule(services.DocumentsModule))
	docsGroup.POST("", g.RequirePermission("documents:write"), docs.Upload)
	docsGroup.GET("", g.RequirePermission("documents:read"), docs.List)
	docsGroup.GET("/:id/download", g.RequirePermission("documents:read"), docs.Download)
	docsGroup.DELETE("/:id", g.RequirePermission("documents:delete"), docs.Delete)
}
