// Package tls builds crypto/tls server configurations from resolved
// settings and keeps certificates fresh on disk.
//
// New translates configured version and cipher suite names into a
// *tls.Config with the key pair loaded eagerly. For deployments where
// certificates are renewed in place (for example by an ACME client),
// CertificateReloader watches the certificate directory and swaps the
// served key pair without a restart; attach it with UseReloader.
package tls
