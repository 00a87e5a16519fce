package cnxml

import "github.com/studylink/cnxgest/internal/xmltree"

// Namespaces used by CNXML module documents.
const (
	NSCNXML  = "http://cnx.rice.edu/cnxml"
	NSMDML   = "http://cnx.rice.edu/mdml"
	NSMathML = "http://www.w3.org/1998/Math/MathML"
)

// cnx returns the qualified tag for a CNXML element.
func cnx(local string) xmltree.Tag {
	return xmltree.Tag{Space: NSCNXML, Local: local}
}

// md returns the qualified tag for an MDML metadata element.
func md(local string) xmltree.Tag {
	return xmltree.Tag{Space: NSMDML, Local: local}
}
