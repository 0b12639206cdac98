package config

import "strings"

// envKeyReplacer maps nested keys such as api.base_url onto
// NEWSDESK_API_BASE_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")
