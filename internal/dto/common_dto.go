package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

// ClientConfigResponse is the public configuration clients read at startup.
type ClientConfigResponse struct {
	Categories           []string `json:"categories"`
	ReportTypes          []string `json:"reportTypes"`
	DailyClaimLimit      int      `json:"dailyClaimLimit"`
	RetentionGraceHours  int      `json:"retentionGraceHours"`
	MaxImageBytes        int64    `json:"maxImageBytes"`
	ImageUploadsEnabled  bool     `json:"imageUploadsEnabled"`
	AutoRejectOnApproval bool     `json:"autoRejectOnApproval"`
}

type PaginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}
