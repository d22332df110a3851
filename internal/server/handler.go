package server

import (
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"placementpulse/internal/errors"
	"placementpulse/internal/extract"
	"placementpulse/internal/predictor"
	"placementpulse/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	tracerName  = "placementpulse.api"
	resumeField = "resume"
	// multipartMemory caps the form bytes held in memory; larger parts spill
	// to temporary files.
	multipartMemory = 8 << 20
)

// analyzeHandler accepts a resume as multipart field "resume" or as the raw
// request body and returns its analysis.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer(tracerName).Start(r.Context(), "api.analyze")
	defer span.End()

	doc, err := s.readResumeUpload(r)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		s.writeAppError(w, r, err)
		return
	}
	span.SetAttributes(
		attribute.String("request.media_type", doc.MediaType),
		attribute.Int("request.size", len(doc.Data)),
	)

	result, err := s.analyzer.Analyze(ctx, doc)
	s.om.Metrics().RecordAnalysis(ctx, result, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis aborted")
		s.Logger.Info("Analysis aborted", "error", err, "client_ip", clientIP(r))
		writeErrorResponse(w, "REQUEST_CANCELLED", "analysis was cancelled", http.StatusServiceUnavailable)
		return
	}

	span.SetAttributes(
		attribute.String("analysis.source", result.Source),
		attribute.Int("analysis.score", result.OverallScore),
	)
	writeJSON(w, http.StatusOK, result)
}

// readResumeUpload reads the uploaded resume and checks its type and size.
func (s *Server) readResumeUpload(r *http.Request) (extract.Document, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var doc extract.Document
	if contentType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return doc, bodyReadError(err)
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(resumeField)
		if err != nil {
			if stderrors.Is(err, http.ErrMissingFile) {
				return doc, errors.NewValidationError(errors.ErrCodeInvalidRequest,
					"multipart field \"resume\" is required", err)
			}
			return doc, bodyReadError(err)
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			return doc, bodyReadError(err)
		}
		doc = extract.Document{Name: header.Filename, MediaType: header.Header.Get("Content-Type"), Data: data}
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return doc, bodyReadError(err)
		}
		doc = extract.Document{Name: "upload", MediaType: r.Header.Get("Content-Type"), Data: data}
	}

	declared := extract.NormalizeMediaType(doc.MediaType)
	if declared == "" || declared == "application/octet-stream" {
		declared = extract.MediaTypeFromFilename(doc.Name)
	}
	doc.MediaType = extract.ResolveMediaType(declared, doc.Data)

	if err := extract.ValidateUpload(doc.MediaType, int64(len(doc.Data)), s.MaxFileSize); err != nil {
		return extract.Document{}, err
	}
	return doc, nil
}

// predictHandler returns the package prediction for a JSON student profile
func (s *Server) predictHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer(tracerName).Start(r.Context(), "api.predict")
	defer span.End()

	var profile types.StudentProfile
	if err := parseJSONRequest(r, &profile); err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}
	if err := profile.Validate(); err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), err))
		return
	}

	prediction, err := s.predictor.Predict(profile)
	s.om.Metrics().RecordPrediction(ctx, err)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err)
		return
	}

	span.SetAttributes(attribute.Float64("prediction.package_lpa", prediction.PackageLPA))
	writeJSON(w, http.StatusOK, prediction)
}

// trainHandler starts a background retraining run
func (s *Server) trainHandler(w http.ResponseWriter, r *http.Request) {
	status, err := s.StartTraining()
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, TrainResponse{
		Message: "Model training started",
		Status:  status,
	})
}

// statusHandler reports the predictor state
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := s.predictor.Status()
	writeJSON(w, http.StatusOK, modelStatusResponse{
		ModelStatus: status,
		Ready:       s.predictor.Ready(),
	})
}

// StartTraining retrains the predictor in the background from the
// configured dataset. It returns ErrTrainingInProgress when a run is
// already active.
func (s *Server) StartTraining() (types.ModelStatus, error) {
	if s.predictor.Status().State == types.ModelTraining || !s.training.CompareAndSwap(false, true) {
		return s.predictor.Status(), predictor.ErrTrainingInProgress
	}

	s.trainings.Add(1)
	go func() {
		defer s.trainings.Done()
		defer s.training.Store(false)

		ctx, span := s.om.Tracer(tracerName).Start(s.baseCtx, "predictor.train")
		defer span.End()

		status, err := s.predictor.Train(ctx, s.dataset)
		s.om.Metrics().RecordTraining(ctx, status, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "training failed")
			return
		}
		span.SetAttributes(
			attribute.Int("training.records", status.TrainedOn),
			attribute.String("training.source", status.DatasetSource),
		)
	}()

	status := s.predictor.Status()
	status.State = types.ModelTraining
	status.Error = ""
	return status, nil
}

// isBodyTooLarge matches the MaxBytesReader failure when it reaches us
// without its type, as multipart parsing can flatten it.
func isBodyTooLarge(err error) bool {
	return strings.Contains(err.Error(), "request body too large")
}
