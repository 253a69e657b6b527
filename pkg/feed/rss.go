package feed

import (
	"encoding/xml"
)

type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Language    string `xml:"language"`
	Items       []Item `xml:"item"`
}

type Item struct {
	Title       string `xml:"title"`
	Description string `xml:"description,omitempty"`
}

// Render serializes the document as UTF-8 XML indented by two spaces
func (r RSS) Render() (string, error) {
	body, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}

	return xml.Header + string(body) + "\n", nil
}
