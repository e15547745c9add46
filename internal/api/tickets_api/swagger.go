package tickets_api

import _ "embed"

//go:embed swagger.json
var SwaggerJSON []byte
