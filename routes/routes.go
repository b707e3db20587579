package routes

import (
	"PrescriptionPad/controllers"
	"PrescriptionPad/templates"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Controllers struct {
	Prescription *controllers.PrescriptionController
	Auth         *controllers.AuthController
}

func Routes(r *gin.Engine, ctrls Controllers, logger *zap.Logger, allowOrigins []string) {
	r.Use(gin.Recovery(), controllers.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: !containsWildcard(allowOrigins),
	}))
	r.SetHTMLTemplate(templates.Pages())

	//pages
	controllers.Prescription(r, ctrls.Prescription)

	//json api
	api := r.Group("/api")
	controllers.PrescriptionAPI(api, ctrls.Prescription)
	controllers.Auth(r, api, ctrls.Auth)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
