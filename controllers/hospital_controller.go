package controllers

import (
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type HospitalController struct {
	hospitalService *services.HospitalService
}

func NewHospitalController(hospitalService *services.HospitalService) *HospitalController {
	return &HospitalController{hospitalService: hospitalService}
}

func (hc *HospitalController) GetHospitals(c *gin.Context) {
	hospitals, err := hc.hospitalService.ListHospitals(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, hospitals)
}

// GetHospital looks a hospital up by name, tolerating small spelling differences.
func (hc *HospitalController) GetHospital(c *gin.Context) {
	hospital, err := hc.hospitalService.GetHospital(c.Request.Context(), c.Param("name"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, hospital)
}
