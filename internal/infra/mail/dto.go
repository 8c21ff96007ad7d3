package mail

// Attachment is an in-memory file part. Inline parts are referenced from the
// HTML body as cid:<ContentID>.
type Attachment struct {
	Filename  string
	Data      []byte
	Inline    bool
	ContentID string
}

type Message struct {
	To          []string
	Cc          []string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Signature struct {
	Name    string
	Title   string
	Company string
	Address string
	Phone   string
	Email   string
	Website string
}

type FollowUpEmailData struct {
	VisitorName    string
	ExhibitionName string
	ProductNames   string
	LogoCID        string
	Signature      Signature
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
