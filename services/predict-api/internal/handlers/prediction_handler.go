package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/utils"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/views"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/services"
	"go.uber.org/zap"
)

// uploadField is the multipart form field carrying the CSV file.
const uploadField = "file"

type PredictionHandler struct {
	logger         *zap.Logger
	single         services.PredictionService
	batch          services.BatchService
	maxUploadBytes int64
}

func NewPredictionHandler(logger *zap.Logger, single services.PredictionService, batch services.BatchService, maxUploadBytes int64) *PredictionHandler {
	return &PredictionHandler{logger: logger, single: single, batch: batch, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes registers prediction routes on the provided group.
func (h *PredictionHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/predict", h.Predict)
	r.POST("/upload_csv", h.UploadCSV)
}

// Predict godoc
// @Summary      Score one transaction
// @Tags         prediction
// @Accept       json
// @Produce      json
// @Param        request  body      views.PredictRequest  true  "transaction"
// @Success      200      {object}  views.PredictResponse
// @Failure      400      {object}  pkg.ErrorResponse
// @Failure      503      {object}  pkg.ErrorResponse
// @Router       /predict [post]
func (h *PredictionHandler) Predict(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		h.abort(c, "", err)
		return
	}

	var req views.PredictRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		h.abort(c, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	resp, err := h.single.Predict(c.Request.Context(), traceID, req.ToTransaction())
	if err != nil {
		h.abort(c, traceID, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadCSV godoc
// @Summary      Score every row of a CSV upload
// @Tags         prediction
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV with the seven feature columns"
// @Success      200   {object}  views.BatchResult
// @Failure      400   {object}  pkg.ErrorResponse
// @Failure      413   {object}  pkg.ErrorResponse
// @Failure      503   {object}  pkg.ErrorResponse
// @Router       /upload_csv [post]
func (h *PredictionHandler) UploadCSV(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		h.abort(c, "", err)
		return
	}

	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			h.abort(c, traceID, pkg.NewAppError(pkg.ErrPayloadTooLargeCode, pkg.ErrPayloadTooLargeCode.Message,
				&http.MaxBytesError{Limit: h.maxUploadBytes}))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	data, err := readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = pkg.NewAppError(pkg.ErrPayloadTooLargeCode, pkg.ErrPayloadTooLargeCode.Message, err)
		} else {
			err = pkg.NewAppError(pkg.ErrInvalidInputCode, "a CSV file is required in form field \""+uploadField+"\"", err)
		}
		h.abort(c, traceID, err)
		return
	}

	res, err := h.batch.PredictBatch(c.Request.Context(), traceID, data)
	if err != nil {
		h.abort(c, traceID, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *PredictionHandler) abort(c *gin.Context, traceID string, err error) {
	resp := pkg.ToErrorResponse(h.logger, traceID, err)
	c.AbortWithStatusJSON(resp.Status, resp)
}
