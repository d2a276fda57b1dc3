package taobao

import (
	"fmt"

	"github.com/yungbote/hotflow/internal/platform/apierr"
)

// APIError is an error_response envelope returned by the TOP router.
type APIError struct {
	Code    int
	Msg     string
	SubCode string
	SubMsg  string
}

func (e *APIError) Error() string {
	if e == nil {
		return "taobao api error"
	}
	msg := e.Msg
	if msg == "" {
		msg = e.SubMsg
	}
	if e.SubCode != "" {
		return fmt.Sprintf("taobao api error %d (%s): %s", e.Code, e.SubCode, msg)
	}
	return fmt.Sprintf("taobao api error %d: %s", e.Code, msg)
}

func (e *APIError) ErrorKind() apierr.Kind { return apierr.KindTransport }

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "taobao http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("taobao http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("taobao http error: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *HTTPError) ErrorKind() apierr.Kind { return apierr.KindTransport }
