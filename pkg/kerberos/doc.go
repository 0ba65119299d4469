// Package kerberos provisions the keytab files a secured role needs before
// it starts. Keytabs are fetched from the master over HTTP into the local
// keytab directory (default /etc/security/keytab) and written atomically
// with mode 0600.
package kerberos
