package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/offertehq/offerte/internal/settings/domain"
	"github.com/shopspring/decimal"
)

type updateSettingsRequest struct {
	CompanyName    *string `json:"company_name"`
	CompanyAddress *string `json:"company_address"`
	CompanyEmail   *string `json:"company_email"`
	IBAN           *string `json:"iban"`
	ChamberNumber  *string `json:"chamber_number"`
	VATNumber      *string `json:"vat_number"`
	LogoURL        *string `json:"logo_url"`

	DefaultVatRate   *decimal.Decimal `json:"default_vat_rate"`
	PricesIncludeVat *bool            `json:"prices_include_vat"`
	Currency         *string          `json:"currency"`
	PaymentTermsDays *int             `json:"payment_terms_days"`
	FooterNote       *string          `json:"footer_note"`
}

func (s *Server) GetSettings(c *gin.Context) {
	resp, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.Update(c.Request.Context(), settingsdomain.UpdateSettingsRequest{
		CompanyName:    req.CompanyName,
		CompanyAddress: req.CompanyAddress,
		CompanyEmail:   req.CompanyEmail,
		IBAN:           req.IBAN,
		ChamberNumber:  req.ChamberNumber,
		VATNumber:      req.VATNumber,
		LogoURL:        req.LogoURL,

		DefaultVatRate:   req.DefaultVatRate,
		PricesIncludeVat: req.PricesIncludeVat,
		Currency:         req.Currency,
		PaymentTermsDays: req.PaymentTermsDays,
		FooterNote:       req.FooterNote,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
