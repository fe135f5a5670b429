package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/auth"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/blob"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/legal"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/pdftext"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/store"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
)

const (
	// minAnalysisText is the extracted-text length above which a document is analyzed
	minAnalysisText = 50
	previewLength   = 500
	// multipartOverhead leaves room for boundaries and headers around the file part
	multipartOverhead = 1 << 20
)

func (s *Server) handleUploadFIR(c *gin.Context) {
	blobs, err := s.blobStore()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Storage backend not configured", err)
		return
	}
	claims, _ := auth.ClaimsFrom(c)

	data, filename, mime, err := s.readUpload(c)
	if err != nil {
		switch {
		case errors.Is(err, errFileTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (max %dMB)", s.config.MaxUploadSize>>20), nil)
		case IsInvalidRequest(err):
			fail(c, http.StatusBadRequest, "File is required", nil)
		default:
			fail(c, http.StatusInternalServerError, "File upload failed", err)
		}
		return
	}

	ctx := c.Request.Context()
	name := blob.SanitizeName(fmt.Sprintf("%s_%d_%s", claims.UserID, s.now().UnixMilli(), filename))

	obj, err := blobs.Put(ctx, name, bytes.NewReader(data), mime)
	if err != nil {
		fail(c, http.StatusInternalServerError, "File upload failed", NewError(ErrUpload, "store "+name, err))
		return
	}
	signed, err := blobs.SignedURL(obj.Path, s.config.SignedURLTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, "File upload failed", NewError(ErrUpload, "sign "+name, err))
		return
	}

	var extracted, analysis gin.H
	if pdftext.IsPDF(mime) {
		extracted, analysis = s.analyzeDocument(c, data)
	}

	meta := &store.Upload{
		ID:        uuid.NewString(),
		UserID:    claims.UserID,
		Filename:  obj.Path,
		URL:       blobs.PublicURL(obj.Path),
		Mime:      mime,
		Size:      int64(len(data)),
		CreatedAt: s.now(),
	}
	if err := s.saveUpload(ctx, meta); err != nil {
		logger.Warnf("Upload metadata save warning: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file": gin.H{
			"user_id":    meta.UserID,
			"filename":   meta.Filename,
			"url":        meta.URL,
			"mime":       meta.Mime,
			"size":       meta.Size,
			"created_at": isoTime(meta.CreatedAt),
		},
		"signedUrl":     signed,
		"extractedText": extracted,
		"analysis":      analysis,
	})
}

func (s *Server) saveUpload(ctx context.Context, meta *store.Upload) error {
	records, err := s.recordStore()
	if err != nil {
		return err
	}
	if err := records.SaveUpload(ctx, meta); err != nil {
		return NewError(ErrStorage, "save upload "+meta.Filename, err)
	}
	return nil
}

var errFileTooLarge = errors.New("file too large")

// readUpload returns the "file" part of a multipart request fully read into memory
func (s *Server) readUpload(c *gin.Context) (data []byte, filename, mime string, err error) {
	limit := s.config.MaxUploadSize
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", "", errFileTooLarge
		}
		return nil, "", "", NewError(ErrInvalidRequest, "missing file part", err)
	}
	if fh.Size > limit {
		return nil, "", "", errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", "", NewError(ErrUpload, "open upload", err)
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, "", "", NewError(ErrUpload, "read upload", err)
	}
	if int64(len(data)) > limit {
		return nil, "", "", errFileTooLarge
	}

	mime = fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return data, fh.Filename, mime, nil
}

// analyzeDocument extracts PDF text and, when there is enough of it, asks the
// models for a document analysis. Failures are logged and never fail the upload.
func (s *Server) analyzeDocument(c *gin.Context, data []byte) (extracted, analysis gin.H) {
	text, err := s.deps.ExtractText(data)
	if err != nil {
		logger.Errorf("%v", NewError(ErrAnalysis, "PDF parsing error", err))
		return nil, nil
	}
	if text == "" {
		return nil, nil
	}

	length := utf8.RuneCountInString(text)
	logger.Infof("Extracted %d characters from PDF", length)
	extracted = gin.H{
		"length":  length,
		"preview": legal.Preview(text, previewLength),
	}

	if length <= minAnalysisText {
		logger.Warnf("Insufficient text extracted for AI analysis")
		return extracted, nil
	}

	result, err := s.deps.Analyzer.Dispatch(c.Request.Context(), legal.DocumentPrompt(text))
	if err != nil {
		logger.Warnf("%v", NewError(ErrAnalysis, "document analysis failed", err))
		return extracted, nil
	}
	return extracted, gin.H{
		"text":      result.Text,
		"model":     result.Model,
		"timestamp": isoTime(result.Timestamp),
	}
}

func (s *Server) handleFile(c *gin.Context) {
	blobs, err := s.blobStore()
	if err != nil {
		fail(c, http.StatusNotFound, "File not found", err)
		return
	}
	name := c.Param("name")
	if err := blobs.Verify(name, c.Query("token")); err != nil {
		fail(c, http.StatusForbidden, "Invalid or expired download link", nil)
		return
	}

	path, err := blobs.Path(name)
	if err != nil {
		fail(c, http.StatusNotFound, "File not found", nil)
		return
	}
	c.File(path)
}
