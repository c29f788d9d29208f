package analyzer

import (
	"context"
	"fmt"
	"math"
	"time"

	"TradePilot/internal/domain/models"
	domsvc "TradePilot/internal/domain/service"
	xhttp "TradePilot/pkg/http"
)

// HTTPSource adapts one external analyzer service to SignalSource. Each
// analyzer exposes a single POST endpoint taking a symbol and returning
// its opinion; responses are normalized at this boundary so the fusion
// engine never sees raw upstream labels.
type HTTPSource struct {
	source  models.Source
	url     string
	client  *xhttp.Client
	timeout time.Duration
}

// NewHTTPSource builds an HTTP-backed signal source.
func NewHTTPSource(source models.Source, url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPSource{
		source:  source,
		url:     url,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		timeout: timeout,
	}
}

func (s *HTTPSource) Name() string { return string(s.source) }

type analyzeReq struct {
	Symbol string `json:"symbol"`
}

// Confidence is a pointer so an analyzer omitting the field gets the
// default rather than an explicit zero-weight opinion.
type analyzeResp struct {
	Recommendation string   `json:"recommendation"`
	Confidence     *float64 `json:"confidence"`
	Phase          string   `json:"phase,omitempty"`
	Reasoning      string   `json:"reasoning,omitempty"`
}

func (s *HTTPSource) Analyze(ctx context.Context, symbol string) (models.Signal, error) {
	var resp analyzeResp
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.url,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: analyzeReq{Symbol: symbol},
	}, &resp)
	if err != nil {
		return models.Signal{}, fmt.Errorf("analyze %s via %s: %w", symbol, s.source, err)
	}

	conf := math.NaN()
	if resp.Confidence != nil {
		conf = *resp.Confidence
	}
	sig := models.Signal{
		Source:         s.source,
		Recommendation: models.Recommendation(resp.Recommendation),
		Confidence:     conf,
	}
	if resp.Phase != "" || resp.Reasoning != "" {
		sig.Context = &models.SignalContext{Phase: resp.Phase, Reasoning: resp.Reasoning}
	}
	return models.NormalizeSignal(sig), nil
}

var _ domsvc.SignalSource = (*HTTPSource)(nil)
