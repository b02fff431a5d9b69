package dnssd

import (
	"fmt"
	"strings"
)

// NormalizeDomain trims surrounding dots and defaults to DefaultDomain.
func NormalizeDomain(domain string) string {
	domain = strings.Trim(domain, ".")
	if domain == "" {
		return DefaultDomain
	}
	return domain
}

// NormalizeRegtype trims surrounding dots, so "_echo._tcp." and "_echo._tcp"
// compare equal.
func NormalizeRegtype(regtype string) string {
	return strings.Trim(regtype, ".")
}

// ValidateInstanceName checks that name fits in one DNS label. The empty
// name is valid and means "use the host name".
func ValidateInstanceName(name string) error {
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: instance name %q exceeds %d bytes", ErrBadParam, name, MaxInstanceNameLen)
	}
	return nil
}

// ValidateRegtype checks a service type of the form "_service._tcp" or
// "_service._udp".
func ValidateRegtype(regtype string) error {
	rt := NormalizeRegtype(regtype)
	parts := strings.Split(rt, ".")
	if len(parts) != 2 {
		return fmt.Errorf("%w: service type %q must be _service._tcp or _service._udp", ErrBadParam, regtype)
	}
	svc, proto := parts[0], parts[1]
	if len(svc) < 2 || svc[0] != '_' || len(svc) > 16 {
		return fmt.Errorf("%w: invalid service name in %q", ErrBadParam, regtype)
	}
	if proto != "_tcp" && proto != "_udp" {
		return fmt.Errorf("%w: invalid protocol in %q", ErrBadParam, regtype)
	}
	return nil
}

// EscapeLabel escapes dots and backslashes in an instance name so it can be
// used as a single label of a full name.
func EscapeLabel(label string) string {
	var b strings.Builder
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c == '.' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, "\\%03d", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeLabel reverses EscapeLabel.
func UnescapeLabel(label string) string {
	var b strings.Builder
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c != '\\' || i+1 >= len(label) {
			b.WriteByte(c)
			continue
		}
		if i+3 < len(label) && isDigit(label[i+1]) && isDigit(label[i+2]) && isDigit(label[i+3]) {
			v := int(label[i+1]-'0')*100 + int(label[i+2]-'0')*10 + int(label[i+3]-'0')
			if v <= 255 {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(label[i+1])
		i++
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ConstructFullName returns "<escaped name>.<regtype>.<domain>." as used in
// resolve replies.
func ConstructFullName(name, regtype, domain string) string {
	return fmt.Sprintf("%s.%s.%s.", EscapeLabel(name), NormalizeRegtype(regtype), NormalizeDomain(domain))
}

// SplitFullName splits a full name into instance name, regtype and domain.
// It honors escaped dots inside the instance label.
func SplitFullName(fullname string) (name, regtype, domain string, err error) {
	fullname = strings.TrimSuffix(fullname, ".")

	// Find the first unescaped dot.
	idx := -1
	for i := 0; i < len(fullname); i++ {
		if fullname[i] == '\\' {
			i++
			continue
		}
		if fullname[i] == '.' {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return "", "", "", fmt.Errorf("%w: malformed full name %q", ErrBadParam, fullname)
	}

	rest := strings.Split(fullname[idx+1:], ".")
	if len(rest) < 3 {
		return "", "", "", fmt.Errorf("%w: malformed full name %q", ErrBadParam, fullname)
	}
	return UnescapeLabel(fullname[:idx]), rest[0] + "." + rest[1], strings.Join(rest[2:], "."), nil
}

// HostTarget returns host as a fully qualified name in domain.
func HostTarget(host, domain string) string {
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ""
	}
	domain = NormalizeDomain(domain)
	if strings.HasSuffix(host, "."+domain) {
		return host + "."
	}
	return host + "." + domain + "."
}

// autoRenamed returns the n-th automatic rename of name, "name (n)".
func autoRenamed(name string, n int) string {
	suffix := fmt.Sprintf(" (%d)", n)
	if len(name)+len(suffix) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen-len(suffix)]
	}
	return name + suffix
}
