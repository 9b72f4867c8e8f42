package dto

import "github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"

// CreateClaimRequest is the body of POST /api/claims. Multipart requests may
// add an "image" file part as proof of ownership.
type CreateClaimRequest struct {
	ReportID    string `json:"reportId" form:"reportId"`
	Description string `json:"description" form:"description"`
}

type DecideClaimRequest struct {
	Action string `json:"action"`
}

type ClaimResponse struct {
	models.Claim
	Report *ReportSummary `json:"report"`
}

type ClaimsOverviewResponse struct {
	ClaimsMade     []ClaimResponse `json:"claimsMade"`
	ClaimsReceived []ClaimResponse `json:"claimsReceived"`
	DailyLimit     int             `json:"dailyLimit"`
	RemainingToday *int            `json:"remainingToday,omitempty"`
}

type SweepResponse struct {
	Candidates     int    `json:"candidates"`
	Deleted        int    `json:"deleted"`
	Skipped        int    `json:"skipped"`
	Failed         int    `json:"failed"`
	OrphanedClaims int64  `json:"orphanedClaims"`
	Cutoff         string `json:"cutoff"`
}
