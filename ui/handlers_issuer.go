package ui

import (
	"io"
	"net/http"
	"strconv"

	"verisure/adapters/sheet"
	"verisure/domain/core"
	"verisure/domain/credential"
	"verisure/internal/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleTemplate(c *gin.Context) {
	if c.Query("format") == sheet.TypeXLSX {
		data, err := sheet.TemplateXLSX()
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+sheet.TemplateNameXLSX+`"`)
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+sheet.TemplateName+`"`)
	c.Data(http.StatusOK, "text/csv", sheet.TemplateCSV())
}

func (s *Server) handleIssuerState(c *gin.Context) {
	c.JSON(http.StatusOK, s.issuance.State())
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		s.writeError(c, errors.InvalidInput("limit must be a positive integer"))
		return
	}
	attempts, err := s.issuance.History(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// handleUpload reads the whole file into memory, then parses and previews it
func (s *Server) handleUpload(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.issuance.ClearUpload()
		s.writeError(c, errors.InvalidInput("Choose a CSV file to upload."))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.issuance.ClearUpload()
		s.writeError(c, errors.InvalidInput("Could not read the uploaded file."))
		return
	}

	res, err := s.issuance.SelectFile(c.Request.Context(), header.Filename, data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload": res, "state": s.issuance.State()})
}

func (s *Server) handleRequestBatch(c *gin.Context) {
	dialog, err := s.issuance.RequestBatch(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dialog": dialog})
}

func (s *Server) handleRequestSingle(c *gin.Context) {
	var form credential.SingleIssuance
	if err := c.ShouldBindJSON(&form); err != nil {
		s.writeError(c, errors.InvalidInput("Invalid issuance request."))
		return
	}
	dialog, err := s.issuance.RequestSingle(c.Request.Context(), form)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dialog": dialog})
}

type confirmRequest struct {
	IntentID string `json:"intent_id"`
}

// handleConfirm executes the intent bound to the dialog. A failure keeps
// the dialog open; the response carries its state so the page can show the
// inline error and offer a retry.
func (s *Server) handleConfirm(c *gin.Context) {
	var req confirmRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, errors.InvalidInput("Invalid confirmation request."))
			return
		}
	}

	out, err := s.issuance.Confirm(c.Request.Context(), core.IntentID(req.IntentID))
	if err != nil {
		s.logger.Info("confirmation failed", zap.String("intent", req.IntentID), zap.Error(err))
		c.JSON(statusFor(err), errorBody(err, gin.H{"dialog": s.issuance.Gate().Dialog()}))
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": out, "state": s.issuance.State()})
}

func (s *Server) handleCancel(c *gin.Context) {
	s.issuance.Cancel()
	c.JSON(http.StatusOK, gin.H{"dialog": s.issuance.Gate().Dialog()})
}
