package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"PrescriptionPad/models"
	"PrescriptionPad/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PrescriptionController struct {
	Manager *services.Manager
	Logger  *zap.Logger
}

func Prescription(router *gin.Engine, ctrl *PrescriptionController) {
	router.GET("/", ctrl.Index)

	form := router.Group("/form")
	{
		form.POST("/meds", ctrl.AddMedRow)
		form.POST("/meds/remove", ctrl.RemoveMedRow)
		form.POST("/clear", ctrl.ClearForm)
	}

	prescription := router.Group("/prescriptions")
	{
		prescription.POST("/save", ctrl.SavePrescription)
		prescription.POST("/print", ctrl.PrintPrescription)
		prescription.GET("/print/view", ctrl.PrintView)
		prescription.POST("/clear", ctrl.ClearAll)
		prescription.POST("/:prescriptionId/load", ctrl.LoadPrescription)
		prescription.POST("/:prescriptionId/delete", ctrl.DeletePrescription)
	}
}

func (ctrl *PrescriptionController) Index(c *gin.Context) {
	view := ctrl.Manager.View(c, c.Query("search"))
	c.HTML(http.StatusOK, "index.html", view)
}

func (ctrl *PrescriptionController) AddMedRow(c *gin.Context) {
	ctrl.Manager.SyncForm(bindForm(c))
	ctrl.Manager.AddMedRow()
	backToIndex(c)
}

func (ctrl *PrescriptionController) RemoveMedRow(c *gin.Context) {
	ctrl.Manager.SyncForm(bindForm(c))
	index, err := strconv.Atoi(c.PostForm("remove"))
	if err == nil {
		ctrl.Manager.RemoveMedRow(index)
	}
	backToIndex(c)
}

/*
* Sync the form from the submitted fields first
* Validation and storage failures are already on the message line
 */
func (ctrl *PrescriptionController) SavePrescription(c *gin.Context) {
	ctrl.Manager.SyncForm(bindForm(c))
	if _, err := ctrl.Manager.Save(c); err != nil {
		ctrl.Logger.Info("Error from manager.Save", zap.Error(err))
	}
	backToIndex(c)
}

/*
* Validate on the originating page, an incomplete form only shows the error
* A valid form is queued and the main page opens the print window for it
 */
func (ctrl *PrescriptionController) PrintPrescription(c *gin.Context) {
	ctrl.Manager.SyncForm(bindForm(c))
	if _, err := ctrl.Manager.Print(); err != nil {
		ctrl.Logger.Info("Error from manager.Print", zap.Error(err))
	}
	backToIndex(c)
}

func (ctrl *PrescriptionController) PrintView(c *gin.Context) {
	doc, ok := ctrl.Manager.TakePrint()
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := services.WritePrintView(c.Writer, doc); err != nil {
		ctrl.Logger.Error("Error from WritePrintView", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (ctrl *PrescriptionController) ClearForm(c *gin.Context) {
	ctrl.Manager.SyncForm(bindForm(c))
	ctrl.Manager.ClearForm(confirmedBy(c))
	backToIndex(c)
}

func (ctrl *PrescriptionController) ClearAll(c *gin.Context) {
	ctrl.Manager.SyncForm(bindForm(c))
	if _, err := ctrl.Manager.ClearAll(c, confirmedBy(c)); err != nil {
		ctrl.Logger.Error("Error from manager.ClearAll", zap.Error(err))
	}
	backToIndex(c)
}

func (ctrl *PrescriptionController) LoadPrescription(c *gin.Context) {
	id, ok := prescriptionID(c)
	if ok {
		_, _ = ctrl.Manager.Load(c, id)
	}
	backToIndex(c)
}

func (ctrl *PrescriptionController) DeletePrescription(c *gin.Context) {
	id, ok := prescriptionID(c)
	if ok {
		if err := ctrl.Manager.Delete(c, id); err != nil && !errors.Is(err, services.ErrPrescriptionNotFound) {
			ctrl.Logger.Error("Error from manager.Delete", zap.Int64("id", id), zap.Error(err))
		}
	}
	backToIndex(c)
}

/*
* Rebuild the form from the submitted fields
* Medication columns are zipped by position, a short column reads as blank
 */
func bindForm(c *gin.Context) services.Form {
	names := c.PostFormArray("med-name")
	doses := c.PostFormArray("med-dose")
	freqs := c.PostFormArray("med-freq")
	rows := max(len(names), len(doses), len(freqs))

	form := services.Form{
		Doctor:  c.PostForm("doctor"),
		Patient: c.PostForm("patient"),
		Notes:   c.PostForm("notes"),
		Meds:    make([]models.MedicationEntry, 0, rows),
	}
	for i := 0; i < rows; i++ {
		form.Meds = append(form.Meds, models.MedicationEntry{
			Name: at(names, i),
			Dose: at(doses, i),
			Freq: at(freqs, i),
		})
	}
	return form
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func confirmedBy(c *gin.Context) services.Confirmer {
	ok := c.PostForm("confirm") == "true" || c.Query("confirm") == "true"
	return services.Confirmed(ok)
}

func prescriptionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("prescriptionId"), 10, 64)
	return id, err == nil
}

func backToIndex(c *gin.Context) {
	target := "/"
	if search := c.PostForm("search"); search != "" {
		target += "?search=" + url.QueryEscape(search)
	}
	c.Redirect(http.StatusSeeOther, target)
}
