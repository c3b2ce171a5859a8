package router

import (
	"github.com/gin-gonic/gin"
	"github.com/studyhub/backend/internal/interfaces/http/handler"
)

// Handlers bundles every handler the API mounts
type Handlers struct {
	System     *handler.SystemHandler
	Branch     *handler.BranchHandler
	Subject    *handler.SubjectHandler
	File       *handler.FileHandler
	Auth       *handler.AuthHandler
	Bookmark   *handler.BookmarkHandler
	Collection *handler.CollectionHandler
}

// Guards carries the route-level middleware the API needs: Session
// validates a bearer token, Admin additionally requires the admin role,
// AuthLimiter throttles the sign-in endpoints and UploadLimiter throttles
// presigned upload requests per user.
type Guards struct {
	Session       gin.HandlerFunc
	Admin         gin.HandlerFunc
	AuthLimiter   gin.HandlerFunc
	UploadLimiter gin.HandlerFunc
}

// Setup mounts the whole API surface onto the engine
func Setup(engine *gin.Engine, h Handlers, g Guards) {
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(catalogRoutes(h))
	r.Register(authRoutes(h, g))
	r.Register(userRoutes(h, g))
	r.Register(collectionRoutes(h, g))
	r.Register(adminRoutes(h, g))
	r.Setup()
}

// catalogRoutes covers the public read surface plus anonymous likes
func catalogRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("catalog", "")

	g.GET("/branches", h.Branch.List)
	g.GET("/branches/:branch", h.Branch.Get)
	g.GET("/branches/:branch/subjects", h.Subject.ListByBranch)

	g.GET("/subjects", h.Subject.List)
	g.GET("/subjects/:subject", h.Subject.Get)

	g.GET("/files", h.File.ListBySubject)
	g.GET("/files/:slug", h.File.Get)
	g.PUT("/files/:id/like", h.File.Like)
	g.PUT("/files/:id/unlike", h.File.Unlike)

	g.GET("/search", h.File.Search)

	return g
}

func authRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	if guards.AuthLimiter != nil {
		g.Use(guards.AuthLimiter)
	}

	g.GET("/google", h.Auth.GoogleLogin)
	g.GET("/google/callback", h.Auth.GoogleCallback)
	g.POST("/refresh", h.Auth.Refresh)

	g.GET("/me", guards.Session, h.Auth.Me)
	g.POST("/logout", guards.Session, h.Auth.Logout)
	g.POST("/logout-all", guards.Session, h.Auth.LogoutAll)

	return g
}

func userRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("user", "/user")
	g.Use(guards.Session)

	g.GET("/bookmarks", h.Bookmark.List)
	g.PUT("/bookmarks/:fileId", h.Bookmark.Add)
	g.DELETE("/bookmarks/:fileId", h.Bookmark.Remove)

	return g
}

func collectionRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("collections", "/collections")
	g.Use(guards.Session)

	g.GET("", h.Collection.List)
	g.POST("", h.Collection.Create)
	g.GET("/:id", h.Collection.Get)
	g.DELETE("/:id", h.Collection.Delete)
	g.PUT("/:id/add-file", h.Collection.AddFile)
	g.PUT("/:id/remove-file", h.Collection.RemoveFile)

	return g
}

func adminRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("admin", "/admin")
	g.Use(guards.Session, guards.Admin)

	g.POST("/branches", h.Branch.Create)
	g.PUT("/branches/:id", h.Branch.Update)
	g.DELETE("/branches/:id", h.Branch.Delete)

	g.POST("/subjects", h.Subject.Create)
	g.PUT("/subjects/:id", h.Subject.Update)
	g.DELETE("/subjects/:id", h.Subject.Delete)

	g.POST("/files", h.File.Create)
	g.PUT("/files/:id", h.File.Update)
	g.DELETE("/files/:id", h.File.Delete)

	uploads := g.Group("uploads", "/files/upload")
	if guards.UploadLimiter != nil {
		uploads.Use(guards.UploadLimiter)
	}
	uploads.POST("/initiate", h.File.InitiateUpload)
	uploads.POST("/confirm/:id", h.File.ConfirmUpload)

	return g
}
