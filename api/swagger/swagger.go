// Package swagger embeds the OpenAPI document for the REST API.
package swagger

import _ "embed"

// Doc is the OpenAPI 2.0 description of the user endpoints.
//
//go:embed user.swagger.json
var Doc []byte
