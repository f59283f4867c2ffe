package extract

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// node is a generic XML element
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func (n node) children(name string) []node {
	var found []node
	for _, child := range n.Nodes {
		if child.XMLName.Local == name {
			found = append(found, child)
		}
	}
	return found
}

func (n node) text() string {
	return strings.TrimSpace(n.Content)
}

func parseNode(content []byte) (node, error) {
	var root node
	err := xml.Unmarshal(content, &root)
	return root, err
}

// rootElement returns the name of the first element of a XML document
func rootElement(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

type toolXML struct {
	XMLName      xml.Name         `xml:"tool"`
	ID           string           `xml:"id,attr"`
	Name         string           `xml:"name,attr"`
	Version      string           `xml:"version,attr"`
	Requirements []requirementXML `xml:"requirements>requirement"`
}

type requirementXML struct {
	Type    string `xml:"type,attr"`
	Version string `xml:"version,attr"`
	Name    string `xml:",chardata"`
}
