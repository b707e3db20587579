package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"PrescriptionPad/models"
	"PrescriptionPad/services"

	util "github.com/KanapuramVaishnavi/Core/util"

	"github.com/gin-gonic/gin"
)

var errConfirmationRequired = errors.New("confirmation required")

func PrescriptionAPI(router gin.IRouter, ctrl *PrescriptionController) {
	prescription := router.Group("/prescriptions")
	{
		prescription.GET("", ctrl.FetchAllPrescriptions)
		prescription.POST("", ctrl.CreatePrescription)
		prescription.DELETE("", ctrl.DeleteAllPrescriptions)
		prescription.GET("/:prescriptionId", ctrl.FetchPrescription)
		prescription.GET("/:prescriptionId/qrcode", ctrl.FetchPrescriptionCode)
		prescription.DELETE("/:prescriptionId", ctrl.DeletePrescriptionByID)
	}
}

func (ctrl *PrescriptionController) FetchAllPrescriptions(c *gin.Context) {
	prescriptions, err := ctrl.Manager.List(c, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, util.FailedResponse(err))
		return
	}
	data, err := toList(prescriptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, util.FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, util.SuccessResponse(data))
}

/*
* Bind the body, id and date are always assigned on save
* Validation failures come back as 400 with the validation message
 */
func (ctrl *PrescriptionController) CreatePrescription(c *gin.Context) {
	var data models.Prescription
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, util.FailedResponse(err))
		return
	}
	prescription, err := ctrl.Manager.Create(c, data)
	if err != nil {
		c.JSON(statusFor(err), util.FailedResponse(err))
		return
	}
	respondRecord(c, prescription)
}

func (ctrl *PrescriptionController) FetchPrescription(c *gin.Context) {
	id, ok := prescriptionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, util.FailedResponse(services.ErrPrescriptionNotFound))
		return
	}
	prescription, err := ctrl.Manager.Get(c, id)
	if err != nil {
		c.JSON(statusFor(err), util.FailedResponse(err))
		return
	}
	respondRecord(c, prescription)
}

func (ctrl *PrescriptionController) FetchPrescriptionCode(c *gin.Context) {
	id, ok := prescriptionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, util.FailedResponse(services.ErrPrescriptionNotFound))
		return
	}
	code, err := ctrl.Manager.Code(c, id)
	if err != nil {
		c.JSON(statusFor(err), util.FailedResponse(err))
		return
	}
	c.Data(http.StatusOK, "image/png", code.PNG)
}

func (ctrl *PrescriptionController) DeletePrescriptionByID(c *gin.Context) {
	id, ok := prescriptionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, util.FailedResponse(services.ErrPrescriptionNotFound))
		return
	}
	if err := ctrl.Manager.Delete(c, id); err != nil {
		c.JSON(statusFor(err), util.FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, util.SuccessResponse(services.PRESCRIPTION_DELETED))
}

func (ctrl *PrescriptionController) DeleteAllPrescriptions(c *gin.Context) {
	cleared, err := ctrl.Manager.ClearAll(c, confirmedBy(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, util.FailedResponse(err))
		return
	}
	if !cleared {
		c.JSON(http.StatusBadRequest, util.FailedResponse(errConfirmationRequired))
		return
	}
	c.JSON(http.StatusOK, util.SuccessResponse(services.PRESCRIPTIONS_CLEARED))
}

func respondRecord(c *gin.Context, prescription models.Prescription) {
	data, err := toMap(prescription)
	if err != nil {
		c.JSON(http.StatusInternalServerError, util.FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, util.SuccessResponse(data))
}

/*
* The response envelope only carries strings, maps and slices of interface{}
* so records go through their JSON form first
 */
func toMap(v any) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func toList[T any](items []T) ([]interface{}, error) {
	data := make([]interface{}, 0, len(items))
	for _, item := range items {
		m, err := toMap(item)
		if err != nil {
			return nil, err
		}
		data = append(data, m)
	}
	return data, nil
}

func statusFor(err error) int {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPrescriptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrCredentialsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
