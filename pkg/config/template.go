package config

import (
	"bytes"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value. Otherwise only the
	// commonly changed settings are written, commented out.
	Full bool

	// BaseURL pre-fills api.base_url when set.
	BaseURL string
}

const templateHeader = `# mdnote configuration
# Values here are overridden by MDNOTE_* environment variables and flags.`

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		cfg := NewConfig()
		if opts.BaseURL != "" {
			cfg.API.BaseURL = opts.BaseURL
		}
		out, err := cfg.ToYAMLWithHeader(templateHeader)
		if err != nil {
			return nil, fmt.Errorf("generate full template: %w", err)
		}
		return out, nil
	}
	return generateMinimalTemplate(opts), nil
}

func generateMinimalTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(templateHeader)
	buf.WriteString("\n\napi:\n")
	if opts.BaseURL != "" {
		fmt.Fprintf(&buf, "  base_url: %s\n", opts.BaseURL)
	} else {
		buf.WriteString("  # base_url: https://notes.example.com\n")
	}
	buf.WriteString(`  # timeout: 30s

# editor:
#   autosave_interval: 10s
#   preview_delay: 300ms

# render:
#   highlight_style: github
#   runnable_languages: [go, javascript, python]

# sandbox:
#   timeout: 10s
#   languages:
#     - name: ruby
#       file_name: main.rb
#       command: [ruby, main.rb]

# diagram:
#   command: mmdc

# drafts:
#   store: file   # file, sqlite or memory
`)

	return buf.Bytes()
}
