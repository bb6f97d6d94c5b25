package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"onboarding-backend/internal/docgen"
	"onboarding-backend/internal/employees"
	"onboarding-backend/internal/pdfinfo"
	"onboarding-backend/internal/shared/storage/object"
	"onboarding-backend/internal/shared/telemetry"
	"onboarding-backend/internal/shared/util"
	"onboarding-backend/internal/templates"
)

const defaultEmployeeKey = "jane_doe"

// Service runs the generate flow: resolve template, fill values, call the
// provider, persist the artifact, record it in the index.
type Service struct {
	docgen    *docgen.Client
	templates *templates.Store
	employees *employees.Store
	store     object.Store
	repo      Repo
	now       func() time.Time
}

func NewService(dg *docgen.Client, tpl *templates.Store, emp *employees.Store, store object.Store, repo Repo) *Service {
	return &Service{
		docgen:    dg,
		templates: tpl,
		employees: emp,
		store:     store,
		repo:      repo,
		now:       time.Now,
	}
}

// GenerateInput mirrors the generate request body.
type GenerateInput struct {
	StepKey          string            `json:"stepKey"`
	TemplateName     string            `json:"templateName"`
	Base64FileString string            `json:"base64FileString"`
	DocumentValues   map[string]string `json:"documentValues"`
	OutputFormat     string            `json:"outputFormat"`
	CurrencyCulture  string            `json:"currencyCulture"`
	EmployeeKey      string            `json:"employeeKey"`
	ReturnBase64     bool              `json:"returnBase64"`
}

// GenerateOutput is the terminal state of one generate run. Saved=false
// carries a reason and the provider's raw response for debugging.
type GenerateOutput struct {
	Saved      bool
	FileName   string
	FileURL    string
	FilePath   string
	FileBase64 string
	Pages      int
	Reason     string
	Detail     string
	Provider   json.RawMessage
}

// Generate walks idle -> analyzing -> generating -> saved. The analyze phase
// is best effort and never blocks generation.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	template, templateFile, err := s.templates.Resolve(templates.ResolveInput{
		StepKey:          in.StepKey,
		TemplateName:     in.TemplateName,
		Base64FileString: in.Base64FileString,
	})
	if err != nil {
		return GenerateOutput{}, err
	}

	values := in.DocumentValues
	if values == nil {
		values = s.employeeValues(in.EmployeeKey)
	}

	telemetry.Info("generate.state", map[string]any{"state": "analyzing", "stepKey": in.StepKey, "template": templateFile})
	if _, err := s.docgen.Analyze(ctx, template, templateFile); err != nil {
		telemetry.Warn("generate.analyze.failed", map[string]any{"error": err.Error()})
	}

	telemetry.Info("generate.state", map[string]any{"state": "generating", "stepKey": in.StepKey, "fields": len(values)})
	result, err := s.docgen.Generate(ctx, docgen.GenerateInput{
		Template:        template,
		DocumentValues:  values,
		OutputFormat:    in.OutputFormat,
		CurrencyCulture: in.CurrencyCulture,
	})
	if err != nil {
		telemetry.Error("generate.state", map[string]any{"state": "generate-failed", "error": err.Error()})
		return GenerateOutput{}, err
	}

	if result.Artifact == "" {
		telemetry.Warn("generate.no-artifact", map[string]any{"stepKey": in.StepKey})
		return GenerateOutput{Saved: false, Reason: "no-pdf-in-response", Provider: result.Raw}, nil
	}

	pdfBytes, err := base64.StdEncoding.DecodeString(result.Artifact)
	if err != nil {
		return GenerateOutput{Saved: false, Reason: "write-failed", Detail: err.Error(), Provider: result.Raw}, nil
	}

	fileName := s.outputFileName(in)
	if _, err := s.store.Save(ctx, fileName, "application/pdf", bytes.NewReader(pdfBytes)); err != nil {
		telemetry.Error("generate.save.failed", map[string]any{"fileName": fileName, "error": err.Error()})
		return GenerateOutput{Saved: false, Reason: "write-failed", Detail: err.Error(), Provider: result.Raw}, nil
	}

	pages, err := pdfinfo.PageCount(pdfBytes)
	if err == nil {
		telemetry.Info("generate.state", map[string]any{"state": "saved", "fileName": fileName, "pages": pages})
	} else {
		pages = 0
		telemetry.Info("generate.state", map[string]any{"state": "saved", "fileName": fileName})
	}

	s.record(ctx, in, fileName)

	out := GenerateOutput{
		Saved:    true,
		FileName: fileName,
		FileURL:  "/output/" + fileName,
		FilePath: s.filePath(fileName),
		Pages:    pages,
	}
	if in.ReturnBase64 {
		out.FileBase64 = result.Artifact
	}
	return out, nil
}

// employeeValues loads and flattens an employee record. Missing records fall
// back to an empty value set so the provider still renders the template.
func (s *Service) employeeValues(employeeKey string) map[string]string {
	key := employeeKey
	if key == "" {
		key = defaultEmployeeKey
	}
	record, err := s.employees.Get(key)
	if err != nil {
		if !errors.Is(err, employees.ErrNotFound) {
			telemetry.Warn("generate.employee.read-failed", map[string]any{"employeeKey": key, "error": err.Error()})
		}
		return map[string]string{}
	}
	return employees.Flatten(record)
}

// outputFileName builds <timestamp>[_<employee-slug>]_<step-slug>.pdf with
// the colon and dot characters of the ISO timestamp replaced by dashes.
func (s *Service) outputFileName(in GenerateInput) string {
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(s.now().UTC().Format("2006-01-02T15:04:05.000Z"))

	step := in.StepKey
	if step == "" {
		step = in.TemplateName
	}
	if step == "" {
		step = "doc"
	}

	name := ts
	if in.EmployeeKey != "" {
		name += "_" + util.Slug(util.DisplayName(in.EmployeeKey))
	}
	return name + "_" + util.Slug(step) + ".pdf"
}

func (s *Service) record(ctx context.Context, in GenerateInput, fileName string) {
	if s.repo == nil {
		return
	}
	step := in.StepKey
	if step == "" {
		step = in.TemplateName
	}
	if step == "" {
		step = "doc"
	}
	doc := Document{
		ID:          uuid.NewString(),
		StepKey:     in.StepKey,
		StepSlug:    util.Slug(step),
		EmployeeKey: in.EmployeeKey,
		FileName:    fileName,
		StorageKey:  fileName,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		telemetry.Warn("generate.index.record-failed", map[string]any{"fileName": fileName, "error": err.Error()})
	}
}

// filePath reports where the artifact lives for stores that expose a local
// path; other backends return the storage key.
func (s *Service) filePath(key string) string {
	if p, ok := s.store.(interface{ Path(string) string }); ok {
		return p.Path(key)
	}
	return key
}

// Recent lists the newest index entries.
func (s *Service) Recent(ctx context.Context, limit int) ([]Document, error) {
	if s.repo == nil {
		return []Document{}, nil
	}
	docs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// FindLatestByStep returns the newest stored PDF for a step, preferring the
// index and falling back to a filename scan over the output store.
func (s *Service) FindLatestByStep(ctx context.Context, stepKey string) (string, []byte, error) {
	slug := util.Slug(stepKey)

	if s.repo != nil {
		if doc, err := s.repo.LatestByStep(ctx, slug); err == nil {
			if data, err := s.readObject(ctx, doc.StorageKey); err == nil {
				return doc.FileName, data, nil
			}
			telemetry.Warn("generate.latest.index-stale", map[string]any{"fileName": doc.FileName})
		}
	}

	infos, err := s.store.List(ctx)
	if err != nil {
		return "", nil, err
	}
	suffix := "_" + slug + ".pdf"
	best := -1
	for i, info := range infos {
		if !strings.HasSuffix(info.Key, suffix) {
			continue
		}
		if best < 0 || info.ModTime.After(infos[best].ModTime) {
			best = i
		}
	}
	if best < 0 {
		return "", nil, ErrNoDocument
	}
	data, err := s.readObject(ctx, infos[best].Key)
	if err != nil {
		return "", nil, err
	}
	return infos[best].Key, data, nil
}

// ReadFile loads one stored artifact by file name.
func (s *Service) ReadFile(ctx context.Context, fileName string) ([]byte, error) {
	return s.readObject(ctx, fileName)
}

func (s *Service) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
