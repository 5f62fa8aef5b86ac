package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/service"
)

type appointmentRequest struct {
	PatientID  string `json:"patientId" binding:"required"`
	ProviderID string `json:"providerId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Type       string `json:"type" binding:"required"`
	Notes      string `json:"notes"`
}

// ListAppointments 患者看到自己的预约，临床人员看到自己负责的预约
func (a *API) ListAppointments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	records, err := a.appointments.List(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err, "Failed to load appointments")
		return
	}
	if records == nil {
		records = []service.AppointmentRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// CreateAppointment 创建预约，当前用户必须是患者或提供者之一
func (a *API) CreateAppointment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	var payload appointmentRequest
	if !bindJSON(c, &payload, "Invalid appointment data") {
		return
	}

	appointment, err := a.appointments.Create(c.Request.Context(), user, service.AppointmentInput{
		PatientID:  payload.PatientID,
		ProviderID: payload.ProviderID,
		Date:       payload.Date,
		Time:       payload.Time,
		Type:       payload.Type,
		Notes:      payload.Notes,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to create appointment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Appointment created successfully",
		"appointmentId": appointment.ID,
	})
}
