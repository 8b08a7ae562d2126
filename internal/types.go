package internal

type SourceFormat string

const (
	SourceJSON SourceFormat = "json"
	SourceXLSX SourceFormat = "xlsx"
	SourceHTML SourceFormat = "html"
)

// RawRecord is one catalog row as exported, keyed by whatever column
// names the source happened to use.
type RawRecord map[string]any

type Department string

const (
	DeptComputerScience Department = "COMPUTER SCIENCE"
	DeptIT              Department = "INFORMATION TECHNOLOGY"
	DeptElectronics     Department = "ELECTRONICS"
	DeptElectrical      Department = "ELECTRICAL"
	DeptMechanical      Department = "MECHANICAL"
	DeptCivil           Department = "CIVIL"
	DeptMaths           Department = "MATHS"
	DeptReference       Department = "REFERENCE"
	DeptGeneral         Department = "GENERAL"
)

type Status string

const (
	StatusAvailable Status = "Available"
	StatusIssued    Status = "Issued"
)

type Location struct {
	Rack  *int `json:"rack"`
	Shelf *int `json:"shelf"`
}

// Book is the normalized catalog record. Field order here is the field
// order of the JSON output.
type Book struct {
	BookID        string     `json:"bookId" validate:"required"`
	AccNo         string     `json:"accNo"`
	Title         string     `json:"title" validate:"required"`
	Authors       []string   `json:"authors" validate:"min=1,dive,required"`
	Publisher     string     `json:"publisher"`
	PublishedYear *int       `json:"publishedYear" validate:"omitempty,gte=1000,lte=2100"`
	Department    Department `json:"department" validate:"required"`
	Status        Status     `json:"status" validate:"oneof=Available Issued"`
	Location      *Location  `json:"location"`
	CallNumber    *string    `json:"callNumber"`
	Edition       any        `json:"edition"`
	Copies        int        `json:"copies" validate:"gte=1"`
}

type Summary struct {
	BookID     string     `json:"bookId"`
	Title      string     `json:"title"`
	Authors    []string   `json:"authors"`
	Department Department `json:"department"`
	Status     Status     `json:"status"`
	Rack       *int       `json:"rack"`
	Shelf      *int       `json:"shelf"`
}

type LocationGroup struct {
	Key   string
	Books []Summary
}

type RunCounts struct {
	Records   int `json:"records"`
	Generated int `json:"generatedIds"`
	Locations int `json:"locations"`
	Unknown   int `json:"unknownLocation"`
	Flagged   int `json:"flagged"`
}
