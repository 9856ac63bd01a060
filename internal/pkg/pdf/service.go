// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/request"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateRequestSummary renders a reviewed stock request as a printable
// delivery note for the warehouse floor
func (s *Service) GenerateRequestSummary(stockRequest *request.StockRequest, branchName string) (*bytes.Buffer, error) {
	data := summaryData{
		RequestNumber: stockRequest.RequestNumber,
		BranchName:    branchName,
		Status:        statusLabel(stockRequest.Status),
		StatusClass:   statusClass(stockRequest.Status),
		GeneratedDate: time.Now().Format("January 2, 2006"),
		Remarks:       stockRequest.GeneralRemarks,
		Company: companyInfo{
			Name:    s.config.Company.Name,
			Address: s.config.Company.Address,
			Phone:   s.config.Company.Phone,
			Email:   s.config.Company.Email,
		},
	}

	if stockRequest.DeliveryDate != nil {
		data.DeliveryDate = stockRequest.DeliveryDate.Format("January 2, 2006")
	}
	if stockRequest.ReviewedAt != nil {
		data.ReviewedDate = stockRequest.ReviewedAt.Format("January 2, 2006")
	}

	for _, item := range stockRequest.Items {
		line := summaryItem{
			ProductName:       item.ProductName,
			RequestedQuantity: item.RequestedQuantity,
			ApprovedQuantity:  item.ApprovedQuantity,
			Availability:      availabilityLabel(item.Availability),
			Remarks:           item.ItemRemarks,
		}
		if item.RestockDate != nil {
			line.RestockDate = item.RestockDate.Format("Jan 2, 2006")
		}
		data.Items = append(data.Items, line)
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data summaryData) (string, error) {
	tmpl := template.Must(template.New("summary").Parse(summaryTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func statusLabel(status request.RequestStatus) string {
	switch status {
	case request.StatusApproved:
		return "Approved"
	case request.StatusRejected:
		return "Rejected"
	case request.StatusPartiallyApproved:
		return "Partially Approved"
	default:
		return "Pending"
	}
}

func statusClass(status request.RequestStatus) string {
	switch status {
	case request.StatusApproved:
		return "status-approved"
	case request.StatusRejected:
		return "status-rejected"
	default:
		return "status-partial"
	}
}

func availabilityLabel(a request.Availability) string {
	switch a {
	case request.AvailabilityAvailable:
		return "Available"
	case request.AvailabilityPartial:
		return "Partially Available"
	case request.AvailabilityNotAvailable:
		return "Not Available"
	default:
		return ""
	}
}

// summaryData represents the data passed to the summary template
type summaryData struct {
	RequestNumber string
	BranchName    string
	Status        string
	StatusClass   string
	GeneratedDate string
	ReviewedDate  string
	DeliveryDate  string
	Remarks       string
	Items         []summaryItem
	Company       companyInfo
}

type summaryItem struct {
	ProductName       string
	RequestedQuantity int
	ApprovedQuantity  int
	Availability      string
	RestockDate       string
	Remarks           string
}

type companyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Delivery note HTML template
const summaryTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Stock Request {{.RequestNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .request-info {
            text-align: right;
            flex: 1;
        }
        .request-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .details {
            margin-bottom: 30px;
        }
        .details td {
            padding: 5px 0;
            vertical-align: top;
        }
        .details .label {
            font-weight: bold;
            width: 150px;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col {
            text-align: right;
            width: 80px;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-approved {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-partial {
            background-color: #fef3c7;
            color: #92400e;
        }
        .status-rejected {
            background-color: #fee2e2;
            color: #991b1b;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Phone: {{.Company.Phone}}</p>
            <p>Email: {{.Company.Email}}</p>
        </div>
        <div class="request-info">
            <div class="request-title">STOCK REQUEST</div>
            <p><strong>Request #:</strong> {{.RequestNumber}}</p>
            <p><strong>Branch:</strong> {{.BranchName}}</p>
            <p><strong>Generated:</strong> {{.GeneratedDate}}</p>
            <p><span class="status-badge {{.StatusClass}}">{{.Status}}</span></p>
        </div>
    </div>

    <div class="details">
        <table>
            {{if .ReviewedDate}}<tr><td class="label">Reviewed:</td><td>{{.ReviewedDate}}</td></tr>{{end}}
            {{if .DeliveryDate}}<tr><td class="label">Delivery Date:</td><td>{{.DeliveryDate}}</td></tr>{{end}}
            {{if .Remarks}}<tr><td class="label">Remarks:</td><td>{{.Remarks}}</td></tr>{{end}}
        </table>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Product</th>
                <th class="qty-col">Requested</th>
                <th class="qty-col">Approved</th>
                <th>Availability</th>
                <th>Restock</th>
                <th>Remarks</th>
            </tr>
        </thead>
        <tbody>
            {{range .Items}}
            <tr>
                <td>{{.ProductName}}</td>
                <td class="qty-col">{{.RequestedQuantity}}</td>
                <td class="qty-col">{{.ApprovedQuantity}}</td>
                <td>{{.Availability}}</td>
                <td>{{.RestockDate}}</td>
                <td>{{.Remarks}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="footer">
        <p>Generated by {{.Company.Name}} branch operations.</p>
    </div>
</body>
</html>
`
