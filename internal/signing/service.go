package signing

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"onboarding-backend/internal/employees"
	"onboarding-backend/internal/esign"
	"onboarding-backend/internal/filebin"
	"onboarding-backend/internal/generation"
	"onboarding-backend/internal/shared/telemetry"
	"onboarding-backend/internal/shared/util"
)

// ErrPDFNotFound signals that no source document could be resolved.
var ErrPDFNotFound = errors.New("Provide filePath/fileUrl or generate first")

// ErrMissingSigner signals that no recipient email could be resolved.
var ErrMissingSigner = errors.New("Provide signerEmail or employeeKey with employeeEmail, or set FOXIT_ESIGN_DEMO_SIGNER_EMAIL")

// Service runs the send flow: resolve the PDF, publish it when a live
// provider will need a URL, resolve the recipient, then hand off to the
// eSign client.
type Service struct {
	esign           *esign.Client
	filebin         *filebin.Client
	generation      *generation.Service
	employees       *employees.Store
	demoSignerEmail string
}

func NewService(es *esign.Client, fb *filebin.Client, gen *generation.Service, emp *employees.Store, demoSignerEmail string) *Service {
	return &Service{
		esign:           es,
		filebin:         fb,
		generation:      gen,
		employees:       emp,
		demoSignerEmail: demoSignerEmail,
	}
}

// SendInput mirrors the send request body.
type SendInput struct {
	StepKey       string `json:"stepKey"`
	FileURL       string `json:"fileUrl"`
	FilePath      string `json:"filePath"`
	PublicFileURL string `json:"publicFileUrl"`
	EmployeeKey   string `json:"employeeKey"`
	SignerEmail   string `json:"signerEmail"`
	SignerName    string `json:"signerName"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
}

// SendOutput carries the provider result plus the public URL that was handed
// to it, when one was used.
type SendOutput struct {
	PublicFileURL string
	Result        esign.SendResult
	Live          bool
}

// Send walks idle -> resolving-file -> uploading -> sending. Filebin upload
// only happens for live sends that lack a public URL, and its failure is not
// fatal; the strategy chain still has base64 variants.
func (s *Service) Send(ctx context.Context, in SendInput) (SendOutput, error) {
	telemetry.Info("esign.send.state", map[string]any{"state": "resolving-file", "stepKey": in.StepKey})
	filename, data, err := s.resolveFile(ctx, in)
	if err != nil {
		return SendOutput{}, err
	}

	live := s.esign.Configured()

	publicURL := in.PublicFileURL
	if live && publicURL == "" {
		telemetry.Info("esign.send.state", map[string]any{"state": "uploading", "filename": filename})
		if up, err := s.filebin.Publish(ctx, filename, data); err == nil {
			publicURL = up.URL
		} else {
			telemetry.Warn("esign.send.upload-failed", map[string]any{"filename": filename, "error": err.Error()})
		}
	}

	signerName, signerEmail, err := s.resolveSigner(in)
	if err != nil {
		return SendOutput{}, err
	}

	subject := in.Subject
	if subject == "" {
		step := in.StepKey
		if step == "" {
			step = "Document"
		}
		subject = util.DisplayName(step) + " — Please Sign"
	}
	message := in.Message
	if message == "" {
		greeting := "Hello"
		if signerName != "" {
			greeting += " " + signerName
		}
		message = greeting + ",\n\nPlease sign the attached document.\n\nThank you."
	}

	telemetry.Info("esign.send.state", map[string]any{
		"state":         "sending",
		"stepKey":       in.StepKey,
		"filename":      filename,
		"signerEmail":   signerEmail,
		"publicFileUrl": publicURL,
		"live":          live,
	})
	result, err := s.esign.Send(ctx, esign.SendInput{
		Document:      data,
		Filename:      filename,
		SignerName:    signerName,
		SignerEmail:   signerEmail,
		Subject:       subject,
		Message:       message,
		PublicFileURL: publicURL,
	})
	if err != nil {
		return SendOutput{}, err
	}

	out := SendOutput{Result: result, Live: live}
	if live {
		out.PublicFileURL = publicURL
	}
	return out, nil
}

// Health reports provider connectivity.
func (s *Service) Health(ctx context.Context) esign.Health {
	return s.esign.Health(ctx)
}

// resolveFile picks the source PDF: explicit path, then an /output URL, then
// the newest artifact for the step.
func (s *Service) resolveFile(ctx context.Context, in SendInput) (string, []byte, error) {
	if in.FilePath != "" {
		data, err := os.ReadFile(in.FilePath)
		if err != nil {
			return "", nil, ErrPDFNotFound
		}
		return filepath.Base(in.FilePath), data, nil
	}

	if in.FileURL != "" {
		if name := outputBasename(in.FileURL); name != "" {
			data, err := s.generation.ReadFile(ctx, name)
			if err != nil {
				return "", nil, ErrPDFNotFound
			}
			return name, data, nil
		}
	}

	if in.StepKey != "" {
		name, data, err := s.generation.FindLatestByStep(ctx, in.StepKey)
		if err != nil {
			return "", nil, ErrPDFNotFound
		}
		return name, data, nil
	}

	return "", nil, ErrPDFNotFound
}

// outputBasename extracts the file name from a URL that points at the app's
// /output path.
func outputBasename(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/output/") {
		return ""
	}
	name, err := url.PathUnescape(filepath.Base(u.Path))
	if err != nil {
		return ""
	}
	return name
}

// resolveSigner prefers the explicit email, then the demo override, then the
// employee record.
func (s *Service) resolveSigner(in SendInput) (string, string, error) {
	name := in.SignerName
	email := in.SignerEmail

	if in.EmployeeKey != "" {
		if record, err := s.employees.Get(in.EmployeeKey); err == nil {
			if name == "" {
				if n, ok := record["employeeName"].(string); ok && n != "" {
					name = n
				} else {
					name = "Employee"
				}
			}
			if email == "" {
				if s.demoSignerEmail != "" {
					email = s.demoSignerEmail
				} else if e, ok := record["employeeEmail"].(string); ok {
					email = e
				}
			}
		}
	}
	if email == "" {
		email = s.demoSignerEmail
	}
	if email == "" {
		return "", "", ErrMissingSigner
	}
	if name == "" {
		name = "Signer"
	}
	return name, email, nil
}
