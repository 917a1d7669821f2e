// Package configs provides embedded configuration templates for agrigraph.
//
// Templates are embedded at build time with //go:embed so they ship inside
// the binary regardless of how it was installed. `agrigraph config init`
// writes them into the project directory.
package configs

import _ "embed"

// ProjectConfigTemplate is the template for .agrigraph.yaml in the project
// root. It documents every key the loader reads; secrets stay out of it.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// DotenvTemplate is the template for the project .env file. Connection
// secrets live here so they never end up in version control.
//
//go:embed dotenv.example
var DotenvTemplate string
