package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/batch"
	"github.com/vegarsti/fuse/dynamodb"
	"github.com/vegarsti/fuse/vision"
)

// Request carries the two saved responses for one page.
type Request struct {
	Name        string          `json:"name"`
	Granularity string          `json:"granularity"`
	Layout      json.RawMessage `json:"layout"`
	Content     json.RawMessage `json:"content"`
}

type handler struct {
	cache  batch.Cache
	logger *slog.Logger
}

func errorResponse(status int, format string, args ...any) *events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": fmt.Sprintf(format, args...)})
	return &events.APIGatewayProxyResponse{
		Headers:    map[string]string{"Content-Type": "application/json"},
		StatusCode: status,
		Body:       string(body) + "\n",
	}
}

func documentResponse(data []byte) *events.APIGatewayProxyResponse {
	return &events.APIGatewayProxyResponse{
		Headers:    map[string]string{"Content-Type": "application/json"},
		StatusCode: http.StatusOK,
		Body:       string(data),
	}
}

func (h *handler) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, "unable to convert base64 to bytes: %s", err), nil
		}
		body = b
	}
	var r Request
	if err := json.Unmarshal(body, &r); err != nil {
		return errorResponse(http.StatusBadRequest, "request body must be a JSON object: %s", err), nil
	}
	if len(r.Layout) == 0 || len(r.Content) == 0 {
		return errorResponse(http.StatusBadRequest, "request needs both layout and content"), nil
	}
	granularity, err := vision.ParseGranularity(r.Granularity)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "%s", err), nil
	}
	settings := batch.Settings{
		Fuse:   fuse.DefaultOptions(),
		Vision: vision.Options{Granularity: granularity, NormalizeUnicode: true},
	}
	logger := h.logger.With("page", r.Name, "request_id", req.RequestContext.RequestID)

	src := fuse.NewSource(r.Name, r.Layout, r.Content)
	checksum := src.Checksum(settings.String())
	if h.cache != nil {
		stored, err := h.cache.Get(ctx, checksum)
		if err != nil {
			logger.Warn("unable to read cache", "error", err)
		} else if stored != nil {
			logger.Info("served from cache")
			return documentResponse(stored), nil
		}
	}

	doc, err := batch.Build(src, settings)
	if err != nil {
		logger.Info("unable to fuse page", "error", err)
		return errorResponse(http.StatusBadRequest, "failed to fuse: %s", err), nil
	}
	data, err := batch.Encode(doc)
	if err != nil {
		logger.Error("fused document is invalid", "error", err)
		return errorResponse(http.StatusInternalServerError, "failed to encode: %s", err), nil
	}
	if h.cache != nil {
		if err := h.cache.Put(ctx, checksum, data); err != nil {
			logger.Warn("unable to cache document", "error", err)
		}
	}
	logger.Info("page fused", "regions", len(doc.Regions), "tokens", doc.TokenCount)
	return documentResponse(data), nil
}

func main() {
	h := &handler{logger: slog.New(slog.NewJSONHandler(os.Stdout, nil))}
	if table := strings.TrimSpace(os.Getenv("FUSE_CACHE_TABLE")); table != "" {
		sess, err := session.NewSession()
		if err != nil {
			h.logger.Error("unable to create session", "error", err)
			os.Exit(1)
		}
		h.cache = dynamodb.New(sess, table)
	}
	lambda.Start(h.HandleRequest)
}
