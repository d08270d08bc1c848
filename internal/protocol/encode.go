package protocol

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var numericRE = regexp.MustCompile(`^\d+$`)

// Encode translates a tokenized command line into a Request. It returns
// nil for an unknown verb; callers must treat nil as "unparseable command".
// Encoding is total over the verb table and assigns a fresh random id per
// call.
func Encode(tokens []string) *Request {
	if len(tokens) == 0 {
		return nil
	}
	verb, args := tokens[0], tokens[1:]

	req := &Request{ID: uuid.NewString()}

	switch verb {
	case "open", "goto", "navigate":
		req.Action = ActionNavigate
		if len(args) > 0 {
			req.URL = normalizeURL(args[0])
		}
	case "click":
		req.Action = ActionClick
		req.Selector = first(args)
	case "fill":
		req.Action = ActionFill
		req.Selector = first(args)
		req.Value = strings.Join(rest(args), " ")
	case "type":
		req.Action = ActionType
		req.Selector = first(args)
		req.Text = strings.Join(rest(args), " ")
	case "hover":
		req.Action = ActionHover
		req.Selector = first(args)
	case "snapshot":
		req.Action = ActionSnapshot
		parseSnapshotFlags(req, args)
	case "screenshot":
		req.Action = ActionScreenshot
		req.Path = first(args)
	case "get":
		return encodeGet(req, args)
	case "press":
		req.Action = ActionPress
		req.Key = first(args)
	case "wait":
		req.Action = ActionWait
		// Disambiguated purely by whether the argument is numeric:
		// "wait 500" sleeps, "wait #sel" waits for an element.
		arg := first(args)
		if numericRE.MatchString(arg) {
			req.Timeout, _ = strconv.Atoi(arg)
		} else {
			req.Selector = arg
		}
	case "back":
		req.Action = ActionBack
	case "forward":
		req.Action = ActionForward
	case "reload":
		req.Action = ActionReload
	case "eval":
		req.Action = ActionEval
		req.Script = strings.Join(args, " ")
	case "close", "quit":
		req.Action = ActionClose
	default:
		return nil
	}

	return req
}

// encodeGet handles the "get text|url|title" sub-grammar.
func encodeGet(req *Request, args []string) *Request {
	switch first(args) {
	case "text":
		req.Action = ActionGetText
		req.Selector = first(rest(args))
	case "url":
		req.Action = ActionGetURL
	case "title":
		req.Action = ActionGetTitle
	default:
		return nil
	}
	return req
}

// parseSnapshotFlags consumes snapshot's leading flag set.
func parseSnapshotFlags(req *Request, args []string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-i", "--interactive":
			req.Interactive = true
		case "-c", "--compact":
			req.Compact = true
		case "-d", "--depth":
			if i+1 < len(args) {
				req.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "-s", "--selector":
			if i+1 < len(args) {
				req.Selector = args[i+1]
				i++
			}
		}
	}
}

// normalizeURL prefixes bare hosts with https://.
func normalizeURL(u string) string {
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	return "https://" + u
}

// EncodeBatch tokenizes and encodes a sequence of whole command strings.
// Strings that fail to encode (unknown verb) are silently dropped rather
// than aborting the remaining commands.
func EncodeBatch(commands []string) []*Request {
	reqs := make([]*Request, 0, len(commands))
	for _, cmd := range commands {
		if req := Encode(SplitCommand(cmd)); req != nil {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// SplitCommand splits a command string into shell-like tokens. Runs inside
// double quotes form a single token with the quotes stripped.
func SplitCommand(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	flushed := true

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			flushed = false
		case !inQuote && (r == ' ' || r == '\t'):
			if !flushed {
				tokens = append(tokens, cur.String())
				cur.Reset()
				flushed = true
			}
		default:
			cur.WriteRune(r)
			flushed = false
		}
	}
	if !flushed {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func first(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func rest(args []string) []string {
	if len(args) > 1 {
		return args[1:]
	}
	return nil
}
