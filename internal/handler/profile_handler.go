package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revivewell/internal/service"
)

type profileUpdateRequest struct {
	Name              *string `json:"name"`
	DOB               *string `json:"dob"`
	ContactNumber     *string `json:"contact_number"`
	PrimarySubstance  *string `json:"primary_substance"`
	UsageDuration     *string `json:"usage_duration"`
	PreviousTreatment *string `json:"previous_treatment"`
	PrimaryGoal       *string `json:"primary_goal"`
	SpecificGoals     *string `json:"specific_goals"`
	SupportSystem     *string `json:"support_system"`
}

type intakeFormRequest struct {
	DOB               string `json:"dob"`
	ContactNumber     string `json:"contactNumber"`
	PrimarySubstance  string `json:"primarySubstance"`
	UsageDuration     string `json:"usageDuration"`
	PreviousTreatment string `json:"previousTreatment"`
	PrimaryGoal       string `json:"primaryGoal"`
	SpecificGoals     string `json:"specificGoals"`
	SupportSystem     string `json:"supportSystem"`
}

// GetProfile 返回当前用户资料，患者会合并 patient_info 字段
func (a *API) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	profile, err := a.profiles.Get(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, profilePayload(*profile))
}

// UpdateProfile 部分更新资料，未提交的字段保持不变
func (a *API) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	var payload profileUpdateRequest
	if !bindJSON(c, &payload, "Invalid profile data") {
		return
	}

	if err := a.profiles.Update(c.Request.Context(), user, payload.toInput()); err != nil {
		handleServiceError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// SubmitNewUserForm 保存患者入院表单
func (a *API) SubmitNewUserForm(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Token is missing")
		return
	}

	var payload intakeFormRequest
	if !bindOptionalJSON(c, &payload, "Invalid form data") {
		return
	}

	if _, err := a.profiles.SubmitIntake(c.Request.Context(), user, payload.toForm()); err != nil {
		handleServiceError(c, err, "Failed to submit form")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "New user form submitted successfully"})
}

func (r profileUpdateRequest) toInput() service.ProfileUpdate {
	return service.ProfileUpdate{
		Name: r.Name,
		Patient: service.PatientFields{
			DOB:               r.DOB,
			ContactNumber:     r.ContactNumber,
			PrimarySubstance:  r.PrimarySubstance,
			UsageDuration:     r.UsageDuration,
			PreviousTreatment: r.PreviousTreatment,
			PrimaryGoal:       r.PrimaryGoal,
			SpecificGoals:     r.SpecificGoals,
			SupportSystem:     r.SupportSystem,
		},
	}
}

func (r intakeFormRequest) toForm() service.IntakeForm {
	return service.IntakeForm{
		DOB:               r.DOB,
		ContactNumber:     r.ContactNumber,
		PrimarySubstance:  r.PrimarySubstance,
		UsageDuration:     r.UsageDuration,
		PreviousTreatment: r.PreviousTreatment,
		PrimaryGoal:       r.PrimaryGoal,
		SpecificGoals:     r.SpecificGoals,
		SupportSystem:     r.SupportSystem,
	}
}

// profilePayload 先写入患者字段，再用账号字段覆盖，id 始终是用户 ID
func profilePayload(profile service.Profile) gin.H {
	payload := gin.H{}
	if info := profile.Patient; info != nil {
		payload["user_id"] = info.UserID
		payload["dob"] = info.DOB
		payload["contact_number"] = info.ContactNumber
		payload["primary_substance"] = info.PrimarySubstance
		payload["usage_duration"] = info.UsageDuration
		payload["previous_treatment"] = info.PreviousTreatment
		payload["primary_goal"] = info.PrimaryGoal
		payload["specific_goals"] = info.SpecificGoals
		payload["support_system"] = info.SupportSystem
	}
	for key, value := range userPayload(profile.User) {
		payload[key] = value
	}
	return payload
}

