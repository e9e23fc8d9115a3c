package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/leadforge/export"
	"github.com/use-agent/leadforge/models"
)

// ExportCSV returns a handler for POST /api/v1/export/csv.
// Responds with a CSV attachment download.
func ExportCSV() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExportCSVRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExportResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		data, err := export.WriteCSV(req.Leads)
		if err != nil {
			respondError(c, err)
			return
		}

		filename := fmt.Sprintf("leads-%s.csv", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv", data)
	}
}

// ExportSheets returns a handler for POST /api/v1/export/google-sheets.
// Appends leads to an existing spreadsheet, or creates one first when
// create_new is set.
func ExportSheets(sheets *export.SheetsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExportSheetsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExportResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		spreadsheetID := req.SpreadsheetID
		if req.CreateNew {
			title := req.NewSheetTitle
			if title == "" {
				title = "Leads " + time.Now().Format("2006-01-02")
			}
			id, err := sheets.Create(c.Request.Context(), req.Token, title)
			if err != nil {
				respondError(c, err)
				return
			}
			spreadsheetID = id
		}
		if spreadsheetID == "" {
			c.JSON(http.StatusBadRequest, models.ExportResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "spreadsheet_id is required unless create_new is set",
				},
			})
			return
		}

		n, err := sheets.Append(c.Request.Context(), req.Token, spreadsheetID, req.Leads)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ExportResponse{
			Success:       true,
			SpreadsheetID: spreadsheetID,
			RowsAppended:  n,
		})
	}
}

// SheetsList returns a handler for POST /api/v1/export/google-sheets/list.
func SheetsList(sheets *export.SheetsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SheetsListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SheetsListResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		list, err := sheets.List(c.Request.Context(), req.Token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SheetsListResponse{Success: true, Spreadsheets: list})
	}
}

// SheetsFetch returns a handler for POST /api/v1/export/google-sheets/fetch.
func SheetsFetch(sheets *export.SheetsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SheetsFetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SheetsFetchResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		leads, err := sheets.Fetch(c.Request.Context(), req.Token, req.SpreadsheetID, req.Range)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SheetsFetchResponse{Success: true, Leads: leads})
	}
}
