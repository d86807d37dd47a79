package certs

import (
	_ "embed"
)

//go:embed authorities/amazon-root-ca-1.pem
var amazonRootCA1 []byte

//go:embed authorities/digicert-global-root-ca.pem
var digiCertGlobalRootCA []byte

//go:embed authorities/digicert-global-root-g2.pem
var digiCertGlobalRootG2 []byte

var (
	CloudFrontAuthority = Authority{Name: "Amazon Root CA 1", PEM: amazonRootCA1}
	AkamaiAuthority     = Authority{Name: "DigiCert Global Root CA", PEM: digiCertGlobalRootCA}
	ServiceAuthority    = Authority{Name: "DigiCert Global Root G2", PEM: digiCertGlobalRootG2}
)

// Default returns the compiled-in table. The service domain comes last
// and doubles as the fallback for hosts no fragment matches.
func Default() *Table {
	return &Table{entries: []Entry{
		{Fragment: "cloudfront.net", Authority: CloudFrontAuthority},
		{Fragment: "akamai.bintray.com", Authority: AkamaiAuthority},
		{Fragment: "bintray.com", Authority: ServiceAuthority},
	}}
}
