package resp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind 错误分类
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindDuplicateName
	KindNotFound
	KindDatabase
	KindSessionExpired
)

var kindNames = map[ErrorKind]string{
	KindValidation:     "validation",
	KindDuplicateName:  "duplicate-name",
	KindNotFound:       "not-found",
	KindDatabase:       "database",
	KindSessionExpired: "session-expired",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Recoverable 是否可由用户修正后重试
func (k ErrorKind) Recoverable() bool {
	return k != KindDatabase
}

// Error 带分类的业务错误。Message 面向用户，cause 面向日志。
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is 支持 errors.Is 按分类匹配
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return te.Kind == e.Kind
}

// UserMessage 面向用户的一行描述，数据库错误不外泄细节
func (e *Error) UserMessage() string {
	if e.Kind == KindDatabase {
		return "操作失败，请稍后重试"
	}
	return e.Message
}

func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// 分类哨兵，供 errors.Is 使用
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrDuplicateName  = &Error{Kind: KindDuplicateName}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrDatabase       = &Error{Kind: KindDatabase}
	ErrSessionExpired = &Error{Kind: KindSessionExpired}
)

// KindOf 提取错误分类，非业务错误归为数据库类
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindDatabase
}
