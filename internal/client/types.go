package client

// ChatReply is the parsed result of a chat exchange.
type ChatReply struct {
	Text             string
	RemoteMessageID  string
	SessionID        string
	FollowUpQuestion string
	SuggestedTopics  []string
}

// Settings is the tenant branding/feature object returned by the
// settings service. Field names follow the wire format.
type Settings struct {
	ClinicName       string `json:"ClinicName"`
	LogoURL          string `json:"LogoUrl"`
	PrivacyNoticeURL string `json:"PrivacyNoticeUrl"`
	BookNowURL       string `json:"BookNowUrl"`
	BookNowLabel     string `json:"BookNowLabel"`
	BookNowShow      string `json:"BookNowShow"` // "True"/"False" on the wire
	SendEmailLabel   string `json:"SendAnEmailLabel"`
	SendEmailShow    string `json:"SendAnEmailShow"`
	BrandColour      string `json:"BrandColour"`
}

// StarterQuestions holds up to three starter prompts. Empty fields mean
// the tenant configured fewer than three.
type StarterQuestions struct {
	Q1 string `json:"q1"`
	Q2 string `json:"q2"`
	Q3 string `json:"q3"`
}

// List returns the non-empty questions in order.
func (q StarterQuestions) List() []string {
	var out []string
	for _, s := range []string{q.Q1, q.Q2, q.Q3} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// StaffDetails carries the staff fields used to personalize the welcome
// message. The service has shipped both field names.
type StaffDetails struct {
	DoctorFirstName string `json:"DoctorFirstName"`
	StaffFirstName  string `json:"StaffFirstName"`
}

// FirstName returns whichever first-name field the service populated.
func (d StaffDetails) FirstName() string {
	if d.DoctorFirstName != "" {
		return d.DoctorFirstName
	}
	return d.StaffFirstName
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	IndexName string `json:"index_name"`
}

type chatResponse struct {
	Response         string   `json:"response"`
	Message          string   `json:"message"`
	MessageID        string   `json:"message_id"`
	SessionID        string   `json:"session_id"`
	FollowUpQuestion string   `json:"follow_up_question"`
	SuggestedTopics  []string `json:"suggested_topics"`
}

type reactionRequest struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Reaction  *bool  `json:"reaction"` // true like, false dislike, null cleared
}

type emailRequest struct {
	Name               string `json:"Name"`
	ContactPersonEmail string `json:"ContactPersonEmail"`
	Message            string `json:"Message"`
}
