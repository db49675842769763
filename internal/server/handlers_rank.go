package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/export"
	"github.com/jonathan/resume-ranker/internal/ingestion"
	"github.com/jonathan/resume-ranker/internal/logging"
	"github.com/jonathan/resume-ranker/internal/ranking"
	"github.com/jonathan/resume-ranker/internal/server/middleware"
	"github.com/jonathan/resume-ranker/internal/store"
	"github.com/jonathan/resume-ranker/internal/types"
)

// Response messages kept stable for existing dashboard clients.
const (
	msgJobDescriptionUploaded = "Job description uploaded successfully."
	msgJobDescriptionMissing  = "Job description not uploaded yet."
	msgResumesRanked          = "Resumes processed and ranked successfully."
)

// parseMultipart bounds and parses a multipart request body.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return &ErrValidation{Message: fmt.Sprintf("invalid multipart form: %v", err)}
	}
	return nil
}

// checkSupported rejects files no extractor understands.
func checkSupported(field, filename string) error {
	if ingestion.Supported(filename) {
		return nil
	}
	return &ErrValidation{
		Field:   field,
		Message: fmt.Sprintf("unsupported file type %q, expected one of %s", filename, strings.Join(ingestion.SupportedExtensions(), ", ")),
	}
}

func readUpload(fh *multipart.FileHeader) (types.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return types.Document{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return types.Document{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return types.Document{Filename: fh.Filename, Data: data}, nil
}

// handleUploadJobDescription stores the job description from an uploaded
// file or, when job_url is given, from the fetched posting. A file whose
// text cannot be extracted is stored as an empty job description.
func (s *Server) handleUploadJobDescription(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.errorFrom(w, r, "Error uploading job description", err)
		return
	}

	var (
		text string
		resp types.JobDescriptionResponse
	)

	if jobURL := strings.TrimSpace(r.FormValue("job_url")); jobURL != "" {
		opts := s.config.URL
		if v := r.FormValue("use_browser"); v != "" {
			useBrowser, err := strconv.ParseBool(v)
			if err != nil {
				s.errorFrom(w, r, "", &ErrValidation{Field: "use_browser", Message: "must be a boolean"})
				return
			}
			opts.UseBrowser = useBrowser
		}

		fetched, meta, err := ingestion.FromURL(r.Context(), jobURL, opts)
		if err != nil {
			s.errorFrom(w, r, "Error fetching job description", err)
			return
		}
		text = fetched
		resp.SourceURL = meta.URL
	} else {
		fh, ok := firstFile(r.MultipartForm, "file")
		if !ok {
			s.errorFrom(w, r, "", &ErrValidation{Field: "file", Message: "a file or job_url is required"})
			return
		}
		if err := checkSupported("file", fh.Filename); err != nil {
			s.errorFrom(w, r, "", err)
			return
		}
		doc, err := readUpload(fh)
		if err != nil {
			s.errorFrom(w, r, "Error uploading job description", err)
			return
		}
		text = s.extractor.Text(doc)
		resp.Filename = doc.Filename
	}

	if err := s.deps.Store.SaveJobDescription(r.Context(), text); err != nil {
		s.errorFrom(w, r, "Error uploading job description", err)
		return
	}

	s.logger.Info("job description stored",
		zap.String("filename", resp.Filename),
		zap.String("source_url", resp.SourceURL),
		zap.Int("chars", len(text)),
		zap.String("preview", logging.Truncate(text, 80)),
		zap.String("operator", middleware.Subject(r)))

	resp.Message = msgJobDescriptionUploaded
	resp.Characters = len([]rune(text))
	s.jsonResponse(w, http.StatusOK, resp)
}

func firstFile(form *multipart.Form, field string) (*multipart.FileHeader, bool) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, false
	}
	return form.File[field][0], true
}

// rankingInput loads the stored job description and the uploaded resumes.
// The job description is checked first so clients get the missing-prerequisite
// error before any upload is read.
func (s *Server) rankingInput(w http.ResponseWriter, r *http.Request) (string, []types.Document, error) {
	jobDescription, err := s.deps.Store.LoadJobDescription(r.Context())
	if err != nil {
		return "", nil, err
	}
	if err := s.parseMultipart(w, r); err != nil {
		return "", nil, err
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return "", nil, &ErrValidation{Field: "files", Message: "at least one resume file is required"}
	}

	docs := make([]types.Document, 0, len(headers))
	for _, fh := range headers {
		if err := checkSupported("files", fh.Filename); err != nil {
			return "", nil, err
		}
		doc, err := readUpload(fh)
		if err != nil {
			return "", nil, err
		}
		docs = append(docs, doc)
	}
	return jobDescription, docs, nil
}

// rankingError writes the 400 the dashboard expects when no job description
// was uploaded, and maps every other error by type.
func (s *Server) rankingError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNoJobDescription) {
		s.errorResponse(w, http.StatusBadRequest, msgJobDescriptionMissing)
		return
	}
	s.errorFrom(w, r, "Error processing resumes", err)
}

// handleUploadResumes ranks the uploaded resumes, replaces the stored
// ranking and returns it.
func (s *Server) handleUploadResumes(w http.ResponseWriter, r *http.Request) {
	jobDescription, docs, err := s.rankingInput(w, r)
	if err != nil {
		s.rankingError(w, r, err)
		return
	}

	result, err := s.deps.Ranker.Rank(r.Context(), jobDescription, docs, nil)
	if err != nil {
		s.rankingError(w, r, err)
		return
	}
	if err := s.deps.Store.SaveRanking(r.Context(), result); err != nil {
		s.rankingError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UploadResumesResponse{
		Message: msgResumesRanked,
		RunID:   result.RunID,
		Results: result.Results,
	})
}

// handleUploadResumesStream ranks like handleUploadResumes but reports each
// scored resume as an SSE event before the final ranking.
func (s *Server) handleUploadResumesStream(w http.ResponseWriter, r *http.Request) {
	jobDescription, docs, err := s.rankingInput(w, r)
	if err != nil {
		s.rankingError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.deps.Ranker.Rank(r.Context(), jobDescription, docs, func(event ranking.ProgressEvent) {
		if err := sse.WriteEvent(EventResumeScored, event); err != nil {
			s.logger.Debug("client stopped reading progress", zap.Error(err))
		}
	})
	if err != nil {
		sse.WriteError(fmt.Sprintf("Error processing resumes: %v", err))
		return
	}
	if err := s.deps.Store.SaveRanking(r.Context(), result); err != nil {
		s.logger.Error("failed to save ranking", zap.Error(err))
		sse.WriteError(fmt.Sprintf("Error processing resumes: %v", err))
		return
	}

	sse.WriteComplete(types.UploadResumesResponse{
		Message: msgResumesRanked,
		RunID:   result.RunID,
		Results: result.Results,
	})
}

// handleRankedResults returns the stored ranking, or the placeholder row
// before the first upload.
func (s *Server) handleRankedResults(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Store.LoadRanking(r.Context())
	if err != nil {
		s.errorFrom(w, r, "Error retrieving results", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result.Results)
}

// handleExportResults returns the stored ranking as an xlsx workbook.
func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Store.LoadRanking(r.Context())
	if err != nil {
		s.errorFrom(w, r, "Error retrieving results", err)
		return
	}

	generated := time.Now()
	var buf bytes.Buffer
	if err := export.WriteRanking(&buf, result, generated); err != nil {
		s.errorFrom(w, r, "Error exporting results", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(result.CreatedAt)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write export", zap.Error(err))
	}
}
