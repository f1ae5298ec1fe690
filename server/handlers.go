package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/linkify"
	"github.com/lukemcguire/linktitle/markdown"
	"github.com/lukemcguire/linktitle/result"
)

// maxLinksPerRequest bounds one /v1/resolve batch.
const maxLinksPerRequest = 100

type resolveRequest struct {
	Links []string `json:"links"`
}

type resolvedLink struct {
	result.Resolution
	Markdown string `json:"markdown"`
}

type resolveResponse struct {
	BatchID     string         `json:"batch_id"`
	Resolved    int            `json:"resolved"`
	Failed      int            `json:"failed"`
	Resolutions []resolvedLink `json:"resolutions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ResolveLinks resolves the links in a JSON body and returns one entry per
// distinct link with its rendered Markdown.
func (con *Controller) ResolveLinks() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var body resolveRequest
		dec := json.NewDecoder(http.MaxBytesReader(res, req.Body, con.conf.MaxBodyBytes))
		if err := dec.Decode(&body); err != nil {
			con.writeError(res, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
		if len(body.Links) == 0 {
			con.writeError(res, http.StatusBadRequest, errors.New("links must not be empty"))
			return
		}
		if len(body.Links) > maxLinksPerRequest {
			con.writeError(res, http.StatusBadRequest,
				fmt.Errorf("too many links: %d (max %d)", len(body.Links), maxLinksPerRequest))
			return
		}

		batch := con.resolver.ResolveBatch(req.Context(), body.Links)

		out := resolveResponse{
			BatchID:     batch.Stats.BatchID,
			Resolved:    batch.Stats.Resolved,
			Failed:      batch.Stats.Failed,
			Resolutions: make([]resolvedLink, 0, len(batch.Resolutions)),
		}
		for _, r := range batch.Resolutions {
			out.Resolutions = append(out.Resolutions, resolvedLink{
				Resolution: r,
				Markdown:   linkify.Render(batch, r.Link),
			})
		}
		con.writeJSON(res, http.StatusOK, out)
	}
}

// ConvertMarkdown rewrites the bare links of a Markdown body. The optional
// start and end query parameters select a byte range.
func (con *Controller) ConvertMarkdown() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		source, err := io.ReadAll(http.MaxBytesReader(res, req.Body, con.conf.MaxBodyBytes))
		if err != nil {
			con.writeError(res, http.StatusRequestEntityTooLarge, fmt.Errorf("read body: %w", err))
			return
		}

		doc := markdown.Parse(source)
		if start, end, ok, err := selection(req, len(source)); err != nil {
			con.writeError(res, http.StatusBadRequest, err)
			return
		} else if ok {
			if err := doc.Select(start, end); err != nil {
				con.writeError(res, http.StatusBadRequest, err)
				return
			}
		}

		batch, err := linkify.Convert(req.Context(), doc, con.resolver)
		if err != nil {
			con.writeError(res, http.StatusInternalServerError, err)
			return
		}
		out, err := doc.Bytes()
		if err != nil {
			con.writeError(res, http.StatusInternalServerError, err)
			return
		}

		res.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		res.Header().Set("X-Batch-ID", batch.Stats.BatchID)
		res.Header().Set("X-Links-Resolved", strconv.Itoa(batch.Stats.Resolved))
		res.Header().Set("X-Links-Failed", strconv.Itoa(batch.Stats.Failed))
		res.WriteHeader(http.StatusOK)
		if _, err := res.Write(out); err != nil {
			con.logger.Warn("write response", zap.Error(err))
		}
	}
}

// Health reports that the server is up.
func (con *Controller) Health() http.HandlerFunc {
	return func(res http.ResponseWriter, _ *http.Request) {
		res.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = res.Write([]byte("ok"))
	}
}

// selection parses the start/end query parameters. ok is false when neither is set.
func selection(req *http.Request, size int) (start, end int, ok bool, err error) {
	q := req.URL.Query()
	rawStart, rawEnd := q.Get("start"), q.Get("end")
	if rawStart == "" && rawEnd == "" {
		return 0, 0, false, nil
	}

	end = size
	if rawStart != "" {
		if start, err = strconv.Atoi(rawStart); err != nil {
			return 0, 0, false, fmt.Errorf("invalid start: %w", err)
		}
	}
	if rawEnd != "" {
		if end, err = strconv.Atoi(rawEnd); err != nil {
			return 0, 0, false, fmt.Errorf("invalid end: %w", err)
		}
	}
	return start, end, true, nil
}

func (con *Controller) writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		con.logger.Warn("encode response", zap.Error(err))
	}
}

func (con *Controller) writeError(res http.ResponseWriter, status int, err error) {
	con.logger.Info("request rejected", zap.Int("status", status), zap.Error(err))
	con.writeJSON(res, status, errorResponse{Error: err.Error()})
}
