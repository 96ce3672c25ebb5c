package resp

type ResponseCode int64

const (
	Succeeded  ResponseCode = 0
	Failed     ResponseCode = 1
	BadRequest ResponseCode = 400
)

type Response struct {
	Code    ResponseCode `json:"code"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
}

func NewResponse(code ResponseCode, message string, data interface{}) *Response {
	return &Response{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func Success(data interface{}) *Response {
	return NewResponse(Succeeded, "OK", data)
}

func Message(msg string) *Response {
	return NewResponse(Succeeded, msg, nil)
}

// FromError 将业务错误转换为对外响应
func FromError(err error) *Response {
	var te *Error
	if e, ok := err.(*Error); ok {
		te = e
	} else {
		te = WrapError(KindDatabase, err, "内部错误")
	}
	return NewResponse(Failed, te.UserMessage(), nil)
}
