// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// MasterRouteHandler defines the interface for master data handlers.
// RoomHandler, ServiceHandler and CustomerHandler implement it.
type MasterRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
}

// RegisterMasterRoutes registers the list/create/get/patch routes of a
// master entity.
//
// Usage:
//
//	repo := catalog_repo.NewServiceRepo(txm)
//	svc := catalog.NewManager(repo, txm, loc)
//	handler := handlers.NewServiceHandler(base, svc)
//	RegisterMasterRoutes(api.Group("/services"), handler)
func RegisterMasterRoutes(group *gin.RouterGroup, handler MasterRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PATCH("/:id", handler.Update)
}
