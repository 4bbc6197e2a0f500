package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/etm-murmansk/site/pkg/config"
	"github.com/etm-murmansk/site/pkg/observability"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// FormField is the multipart field carrying the file
const FormField = "file"

// Client-facing messages
const (
	MsgNoFile       = "Файл не загружен"
	MsgPartial      = "Файл загружен частично"
	MsgUploadFailed = "Неизвестная ошибка загрузки"
	MsgBadType      = "Недопустимый тип файла"
	MsgSaveFailed   = "Не удалось сохранить файл"
)

// Upload outcomes recorded in metrics
const (
	OutcomeStored   = "stored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Store persists an uploaded object under key
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// Result is returned to the client after a successful upload
type Result struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MIME     string `json:"mime"`
}

// Service validates and stores images
type Service struct {
	store      Store
	maxBytes   int64
	extensions []string
	mimeTypes  []string
	urlPrefix  string
	metrics    *observability.Metrics

	now   func() time.Time
	newID func() string
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records upload counters
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces the time source used for the month directory
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the unique part of file names
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates an upload service
func NewService(store Store, cfg config.UploadConfig, opts ...Option) *Service {
	s := &Service{
		store:      store,
		maxBytes:   cfg.MaxBytes,
		extensions: lowerAll(cfg.Extensions),
		mimeTypes:  lowerAll(cfg.MIMETypes),
		urlPrefix:  cfg.URLPrefix,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

// FileFromRequest extracts the single file sent in the "file" field. The
// request body is capped slightly above the file size limit.
func (s *Service) FileFromRequest(w http.ResponseWriter, r *http.Request) (*multipart.FileHeader, error) {
	// multipart framing on top of the file itself
	const overhead = 64 << 10

	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return nil, apperr.BadRequest(MsgNoFile)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+overhead)
	err := r.ParseMultipartForm(s.maxBytes + overhead)
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return nil, apperr.Wrap(apperr.KindBadRequest, s.tooLargeMessage(), err)
	case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, multipart.ErrMessageTooLarge):
		return nil, apperr.Wrap(apperr.KindBadRequest, MsgPartial, err)
	case err != nil:
		return nil, apperr.Wrap(apperr.KindBadRequest, MsgUploadFailed, err)
	}

	files := r.MultipartForm.File[FormField]
	if len(files) != 1 {
		return nil, apperr.BadRequest(MsgNoFile)
	}
	return files[0], nil
}

// Save validates the file and writes it to the store
func (s *Service) Save(ctx context.Context, fh *multipart.FileHeader) (*Result, error) {
	res, err := s.save(ctx, fh)
	if s.metrics != nil {
		switch {
		case err == nil:
			s.metrics.UploadsTotal.WithLabelValues(OutcomeStored).Inc()
			s.metrics.UploadBytes.Observe(float64(res.Size))
		case apperr.Is(err, apperr.KindInternal):
			s.metrics.UploadsTotal.WithLabelValues(OutcomeFailed).Inc()
		default:
			s.metrics.UploadsTotal.WithLabelValues(OutcomeRejected).Inc()
		}
	}
	return res, err
}

func (s *Service) save(ctx context.Context, fh *multipart.FileHeader) (*Result, error) {
	if fh == nil {
		return nil, apperr.BadRequest(MsgNoFile)
	}
	if fh.Size > s.maxBytes {
		return nil, apperr.BadRequest(s.tooLargeMessage())
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if !slices.Contains(s.extensions, ext) {
		return nil, apperr.BadRequest("Недопустимый формат файла. Разрешены: " + strings.Join(s.extensions, ", "))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, MsgUploadFailed, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, MsgPartial, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.BadRequest(s.tooLargeMessage())
	}

	mime, ok := s.detect(data)
	if !ok {
		return nil, apperr.BadRequest(MsgBadType)
	}

	subdir := s.now().Format("2006-01")
	filename := "img_" + s.newID() + "." + ext
	key := subdir + "/" + filename

	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mime); err != nil {
		return nil, apperr.InternalMessage(MsgSaveFailed, fmt.Errorf("store %s: %w", key, err))
	}

	observability.FromContext(ctx).WithField("key", key).WithField("size", len(data)).Info("image uploaded")

	return &Result{
		Success:  true,
		URL:      s.urlPrefix + key,
		Filename: filename,
		Size:     int64(len(data)),
		MIME:     mime,
	}, nil
}

// detect sniffs the content type and matches it against the allow-list,
// returning the allow-listed spelling.
func (s *Service) detect(data []byte) (string, bool) {
	mt := mimetype.Detect(data)
	for _, allowed := range s.mimeTypes {
		if mt.Is(allowed) {
			return allowed, true
		}
	}
	return "", false
}

func (s *Service) tooLargeMessage() string {
	mb := strconv.FormatFloat(float64(s.maxBytes)/1024/1024, 'f', -1, 64)
	return "Файл слишком большой. Максимум: " + mb + " MB"
}
