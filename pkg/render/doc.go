// Package render writes an output group's entries to its config file under
// <installRoot>/<package>/<outputDirectory>/<filename>.
//
// The group's configFormat picks the writer: properties (the default),
// yaml, toml, or custom. Custom executes a text/template named by the
// group's templateName, looked up first in the package's own templates
// directory and then in the agent's template directory. Templates see
// .Items in entry order, .ItemsMap by name, and .Maps for map entries.
package render
