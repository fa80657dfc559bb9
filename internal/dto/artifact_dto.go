package dto

import "time"

// ArtifactSummaryDTO is used for listing a user's stored artifacts.
type ArtifactSummaryDTO struct {
	ID           uint      `json:"id"`
	OriginalName string    `json:"original_name"`
	FileName     string    `json:"file_name"`
	Kind         string    `json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
}

// RejectedFileDTO reports one upload that failed normalization. The
// sibling files in the same batch are unaffected.
type RejectedFileDTO struct {
	OriginalName string `json:"original_name"`
	Reason       string `json:"reason"`
}

// UploadResponseDTO is the result of a multi-file upload: every file is
// either stored as an artifact or rejected with a reason.
type UploadResponseDTO struct {
	Uploaded []ArtifactSummaryDTO `json:"uploaded"`
	Rejected []RejectedFileDTO    `json:"rejected,omitempty"`
}
