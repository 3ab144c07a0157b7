package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/pkg/logger"
	"github.com/okian/facecam/pkg/metrics"
)

const (
	opSendFrame        = "send_frame"
	msgInvalidResponse = "invalid response"
)

type frameRequest struct {
	Image string `json:"image"`
}

type frameResponse struct {
	envelope
	Faces []model.Detection `json:"faces"`
}

// SendFrame posts one encoded frame and returns the detections.
func (c *Client) SendFrame(ctx context.Context, dataURI string) (model.Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	status, body, err := c.doJSON(ctx, opSendFrame, http.MethodPost, c.paths.ProcessFrame, frameRequest{Image: dataURI})
	if err == nil {
		var res model.Result
		res, err = decodeResult(status, body)
		if err == nil {
			metrics.RecordRecognition(metrics.OutcomeOK, msSince(start))
			c.logger.Debug(ctx, "frame recognized", logger.Int("faces", res.Count()))
			return res, nil
		}
	}

	outcome := metrics.OutcomeRemoteError
	if errors.Is(err, model.ErrTransport) {
		outcome = metrics.OutcomeTransportError
	}
	metrics.RecordRecognition(outcome, msSince(start))
	return model.Result{}, err
}

// decodeResult accepts either {"faces": [...]} or a bare array.
func decodeResult(status int, body []byte) (model.Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var faces []model.Detection
		if err := json.Unmarshal(trimmed, &faces); err != nil {
			return model.Result{}, &model.RemoteProcessingError{Status: status, Message: msgInvalidResponse}
		}
		return model.Result{Faces: faces}, nil
	}

	var resp frameResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return model.Result{}, &model.RemoteProcessingError{Status: status, Message: msgInvalidResponse}
	}
	if err := resp.failed(status, "recognition failed"); err != nil {
		return model.Result{}, err
	}
	return model.Result{Faces: resp.Faces}, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
