package fetcher

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// charsetEncodings maps the charset names github.com/gogs/chardet reports to
// the matching golang.org/x/text decoder. Unrecognized names fall through to
// the latin-1 fallback in decodeText.
var charsetEncodings = map[string]encoding.Encoding{
	"UTF-8":        unicode.UTF8,
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"ISO-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-2":   charmap.ISO8859_2,
	"windows-1250": charmap.Windows1250,
	"ISO-8859-5":   charmap.ISO8859_5,
	"windows-1251": charmap.Windows1251,
	"ISO-8859-9":   charmap.ISO8859_9,
	"windows-1254": charmap.Windows1254,
	"Shift_JIS":    japanese.ShiftJIS,
	"EUC-JP":       japanese.EUCJP,
	"ISO-2022-JP":  japanese.ISO2022JP,
	"EUC-KR":       korean.EUCKR,
	"GB18030":      simplifiedchinese.GB18030,
	"GBK":          simplifiedchinese.GBK,
	"Big5":         traditionalchinese.Big5,
	"HZ-GB-2312":   simplifiedchinese.HZGB2312,
}

// decodeCharset decodes body using the x/text encoding matching name. It
// reports false when name is not one chardet can report that we have a
// decoder for, so the caller falls through to the UTF-8/latin-1 fallback.
func decodeCharset(body []byte, name string) (string, bool) {
	enc, ok := charsetEncodings[name]
	if !ok {
		return "", false
	}
	if strings.EqualFold(name, "UTF-8") {
		return string(body), true
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

// decodeLatin1 is the ultimate fallback for bytes that are neither a
// confidently-sniffed charset nor valid UTF-8: every byte maps 1:1 to a
// Unicode code point, so it never fails and never loses data.
func decodeLatin1(body []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
