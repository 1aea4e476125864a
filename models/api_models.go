// models/api_models.go
package models

// DatasetListResponse is the JSON body of GET /api/datasets.
type DatasetListResponse struct {
	RunID    int64       `json:"run_id"`
	Name     string      `json:"name,omitempty"`
	Count    int         `json:"count"`
	Datasets []ReportRow `json:"datasets"`
}
