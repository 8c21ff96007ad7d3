package kommo

import "time"

type Config struct {
	BaseURL string // e.g. https://<account>.kommo.com/api/v4
	Token   string
	// StatusID places new leads in a pipeline stage; zero uses the pipeline default.
	StatusID int
	Timeout  time.Duration
}

// LeadInput is one captured visitor as the CRM sees it.
type LeadInput struct {
	Name           string
	Email          string
	Phone          string
	CompanyName    string
	ExhibitionName string
	ProductNames   []string
}

type embedded struct {
	Embedded struct {
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}
