package controllers

import (
	"errors"
	"net/http"

	"PrescriptionPad/models"
	"PrescriptionPad/services"

	util "github.com/KanapuramVaishnavi/Core/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Gate *services.CredentialGate
}

type loginPage struct {
	Username string
	Message  models.Message
}

func Auth(router *gin.Engine, api gin.IRouter, ctrl *AuthController) {
	router.GET("/login", ctrl.LoginPage)
	router.POST("/login", ctrl.Login)
	api.POST("/login", ctrl.LoginAPI)
}

func (ctrl *AuthController) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginPage{})
}

/*
* On success the flag is stored and the user goes to the main page
* Otherwise the login page is shown again with an inline message
 */
func (ctrl *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	err := ctrl.Gate.Login(c, username, c.PostForm("password"))
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	msg := services.INVALID_CREDENTIALS
	if errors.Is(err, services.ErrCredentialsUnavailable) {
		msg = services.COULD_NOT_VERIFY_CREDENTIALS
	}
	c.HTML(statusFor(err), "login.html", loginPage{
		Username: username,
		Message:  models.Message{Text: msg, Error: true},
	})
}

func (ctrl *AuthController) LoginAPI(c *gin.Context) {
	var data models.UserCredential
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, util.FailedResponse(err))
		return
	}
	if err := ctrl.Gate.Login(c, data.Username, data.Password); err != nil {
		c.JSON(statusFor(err), util.FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, util.SuccessResponse("Logged in"))
}
