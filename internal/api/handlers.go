package api

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// jobTimeout bounds how long one background conversion may run.
const jobTimeout = 10 * time.Minute

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, cleanup, err := s.parseRequest(w, r)
	if err != nil {
		jsonError(w, err.Error(), statusForError(err))
		return
	}
	defer cleanup()

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		jsonError(w, errors.UserMessage(err), statusForError(err))
		return
	}

	outputs := collectOutputs(result, opts)
	if len(outputs) == 0 {
		jsonError(w, "no output produced", http.StatusInternalServerError)
		return
	}
	writeOutputs(w, outputs)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	opts, cleanup, err := s.parseRequest(w, r)
	if err != nil {
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusQueued,
		Formats:   opts.Formats,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(r.Context(), job); err != nil {
		cleanup()
		jsonError(w, errors.UserMessage(err), http.StatusInternalServerError)
		return
	}

	// Build the response before handing the job to the worker
	// goroutine, which mutates it as the conversion progresses.
	resp := map[string]string{
		"job_id":     job.ID,
		"status":     job.Status,
		"poll_url":   fmt.Sprintf("/api/jobs/%s", job.ID),
		"result_url": fmt.Sprintf("/api/jobs/%s/result", job.ID),
	}

	// The conversion outlives the request, so it runs on its own context.
	go func() {
		defer cleanup()
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.runJob(ctx, job, opts)
	}()

	jsonResponse(w, resp, http.StatusAccepted)
}

// runJob executes one queued conversion, recording progress in the store.
func (s *Server) runJob(ctx context.Context, job *Job, opts pipeline.Options) {
	job.Status = StatusRunning
	job.UpdatedAt = time.Now().UTC()
	_ = s.store.Put(ctx, job)

	result, err := s.runner.Execute(ctx, opts)
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		s.log.Error("job failed", "job", job.ID, "error", err)
		job.Status = StatusFailed
		job.Error = errors.UserMessage(err)
		_ = s.store.Put(ctx, job)
		return
	}

	job.Status = StatusDone
	job.Documents = result.Stats.DocumentCount
	job.Pages = result.Stats.PageCount
	job.Outputs = collectOutputs(result, opts)
	if err := s.store.Put(ctx, job); err != nil {
		s.log.Error("store job result", "job", job.ID, "error", err)
	}
	s.log.Info("job finished", "job", job.ID, "documents", job.Documents, "pages", job.Pages)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		jsonError(w, errors.UserMessage(err), statusForError(err))
		return
	}
	jsonResponse(w, job, http.StatusOK)
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		jsonError(w, errors.UserMessage(err), statusForError(err))
		return
	}
	switch job.Status {
	case StatusDone:
		writeOutputs(w, job.Outputs)
	case StatusFailed:
		jsonError(w, job.Error, http.StatusUnprocessableEntity)
	default:
		jsonError(w, fmt.Sprintf("job is %s", job.Status), http.StatusConflict)
	}
}

// parseRequest reads the multipart upload, saves the files to a temp
// directory, and builds pipeline options from the form fields. The
// returned cleanup removes the temp directory.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (pipeline.Options, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return pipeline.Options{}, noop, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return pipeline.Options{}, noop, errors.New(errors.ErrCodeInvalidInput, "at least one file is required")
	}

	dir, err := os.MkdirTemp("", "slidegrid-upload-")
	if err != nil {
		return pipeline.Options{}, noop, errors.Wrap(errors.ErrCodeInternal, err, "create upload dir")
	}
	cleanup := func() { os.RemoveAll(dir) }

	inputs := make([]string, 0, len(files))
	for i, header := range files {
		path, err := saveUpload(dir, i, header)
		if err != nil {
			cleanup()
			return pipeline.Options{}, noop, err
		}
		inputs = append(inputs, path)
	}

	opts := pipeline.NewOptions(inputs...)
	opts.SingleFile = true
	opts.Logger = s.log
	if err := applyFormValues(&opts, r); err != nil {
		cleanup()
		return pipeline.Options{}, noop, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		cleanup()
		return pipeline.Options{}, noop, err
	}
	return opts, cleanup, nil
}

// saveUpload writes one uploaded file into dir, keeping the original
// extension so input detection works. The index prefix preserves the
// upload order.
func saveUpload(dir string, index int, header *multipart.FileHeader) (string, error) {
	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New(errors.ErrCodeInvalidInput, "upload %d has no filename", index)
	}
	// The name feeds index pages and output file names downstream.
	if err := errors.ValidateDocumentName(name); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "upload %d", index)
	}

	src, err := header.Open()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "open upload %q", name)
	}
	defer src.Close()

	path := filepath.Join(dir, fmt.Sprintf("%03d_%s", index, name))
	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "save upload %q", name)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "save upload %q", name)
	}
	return path, nil
}

// applyFormValues maps form fields onto pipeline options. Absent fields
// keep their defaults.
func applyFormValues(opts *pipeline.Options, r *http.Request) error {
	if v := r.FormValue("slides_per_row"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "invalid slides_per_row %q", v)
		}
		opts.SlidesPerRow = n
	}
	if v := r.FormValue("rows_per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "invalid rows_per_page %q", v)
		}
		opts.RowsPerPage = n
	}
	for field, dst := range map[string]*float64{
		"gap":        &opts.Gap,
		"margin":     &opts.Margin,
		"top_margin": &opts.TopMargin,
		"scale":      &opts.Scale,
	} {
		if v := r.FormValue(field); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", field, v)
			}
			*dst = f
		}
	}
	opts.RTL = r.FormValue("rtl") == "true"
	opts.ValidateOutput = r.FormValue("validate") == "true"
	opts.NoNewPage = r.FormValue("no_new_page") == "true"
	opts.Index = r.FormValue("index") == "true"
	opts.Refresh = r.FormValue("refresh") == "true"
	if r.FormValue("single_file") == "false" {
		opts.SingleFile = false
	}
	if v := r.FormValue("format"); v != "" {
		opts.Formats = strings.Split(v, ",")
	}
	return nil
}

// collectOutputs flattens a pipeline result into named output files.
func collectOutputs(result *pipeline.Result, opts pipeline.Options) []Output {
	if opts.SingleFile {
		outputs := make([]Output, 0, len(result.Artifacts))
		for _, format := range opts.Formats {
			data, ok := result.Artifacts[format]
			if !ok {
				continue
			}
			outputs = append(outputs, Output{Name: "slides_grid." + format, Data: data})
		}
		return outputs
	}

	outputs := make([]Output, 0, len(result.Files))
	for _, doc := range result.Documents {
		data, ok := result.Files[doc.Name]
		if !ok {
			continue
		}
		outputs = append(outputs, Output{Name: doc.Name + "_grid.pdf", Data: data})
	}
	return outputs
}

// writeOutputs streams outputs to the client: a single file directly,
// multiple files as a zip archive.
func writeOutputs(w http.ResponseWriter, outputs []Output) {
	if len(outputs) == 1 {
		out := outputs[0]
		w.Header().Set("Content-Type", contentTypeFor(out.Name))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Name))
		w.Write(out.Data)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="slides_grid.zip"`)
	zw := zip.NewWriter(w)
	for _, out := range outputs {
		f, err := zw.Create(out.Name)
		if err != nil {
			return
		}
		if _, err := f.Write(out.Data); err != nil {
			return
		}
	}
	_ = zw.Close()
}

func contentTypeFor(name string) string {
	switch strings.TrimPrefix(filepath.Ext(name), ".") {
	case pipeline.FormatPDF:
		return "application/pdf"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// statusForError maps pipeline error codes onto HTTP statuses.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeUnsupportedFormat:
		return http.StatusBadRequest
	case errors.ErrCodeDecodeFailure, errors.ErrCodeMissingImage:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeJobNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
