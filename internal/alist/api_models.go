package alist

import "encoding/json"

// API endpoint paths
const (
	loginEndpoint  = "/api/auth/login"
	listEndpoint   = "/api/fs/list"
	copyEndpoint   = "/api/fs/copy"
	removeEndpoint = "/api/fs/remove"
)

// apiEnvelope is the response wrapper used by every alist endpoint. A request
// can fail with HTTP 200 and a non-200 code, so both must be checked.
type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

type listRequest struct {
	Path     string `json:"path"`
	Password string `json:"password"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Refresh  bool   `json:"refresh"`
}

type listData struct {
	Content []listEntry `json:"content"`
	Total   int         `json:"total"`
}

type listEntry struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	IsDir    bool   `json:"is_dir"`
	Modified string `json:"modified"`
}

type copyRequest struct {
	SrcDir string   `json:"src_dir"`
	DstDir string   `json:"dst_dir"`
	Names  []string `json:"names"`
}

type removeRequest struct {
	Dir   string   `json:"dir"`
	Names []string `json:"names"`
}
