package reportbro

import (
	"fmt"
)

// Message keys used for user-facing report errors. A caller can map these
// keys to localized messages; ObjectID and Field of the Error pinpoint the
// failing template element.
const (
	msgKeyInvalidPageSize                  = "errorMsgInvalidPageSize"
	msgKeyInvalidPattern                   = "errorMsgInvalidPattern"
	msgKeyInvalidPosition                  = "errorMsgInvalidPosition"
	msgKeyInvalidSize                      = "errorMsgInvalidSize"
	msgKeyInvalidLink                      = "errorMsgInvalidLink"
	msgKeyInvalidBarCode                   = "errorMsgInvalidBarCode"
	msgKeyInvalidImage                     = "errorMsgInvalidImage"
	msgKeyInvalidImageSource               = "errorMsgInvalidImageSource"
	msgKeyInvalidImageSourceParameter      = "errorMsgInvalidImageSourceParameter"
	msgKeyUnsupportedImageType             = "errorMsgUnsupportedImageType"
	msgKeyLoadingImageFailed               = "errorMsgLoadingImageFailed"
	msgKeyLocalImageNotAllowed             = "errorMsgLocalImageNotAllowed"
	msgKeyExternalImageNotAllowed          = "errorMsgExternalImageNotAllowed"
	msgKeyMissingParameter                 = "errorMsgMissingParameter"
	msgKeyMissingParameterData             = "errorMsgMissingParameterData"
	msgKeyMissingDataSourceParameter       = "errorMsgMissingDataSourceParameter"
	msgKeyMissingData                      = "errorMsgMissingData"
	msgKeyMissingExpression                = "errorMsgMissingExpression"
	msgKeyInvalidDataSource                = "errorMsgInvalidDataSource"
	msgKeyInvalidDataSourceParameter       = "errorMsgInvalidDataSourceParameter"
	msgKeyInvalidExpression                = "errorMsgInvalidExpression"
	msgKeyInvalidExpressionNameNotDef      = "errorMsgInvalidExpressionNameNotDefined"
	msgKeyInvalidExpressionFuncNotDef      = "errorMsgInvalidExpressionFuncNotDefined"
	msgKeyInvalidExpressionType            = "errorMsgInvalidExpressionType"
	msgKeyInvalidParameterName             = "errorMsgInvalidParameterName"
	msgKeyInvalidNumber                    = "errorMsgInvalidNumber"
	msgKeyInvalidDate                      = "errorMsgInvalidDate"
	msgKeyInvalidArray                     = "errorMsgInvalidArray"
	msgKeyInvalidMap                       = "errorMsgInvalidMap"
	msgKeyInvalidTestData                  = "errorMsgInvalidTestData"
	msgKeyDuplicateParameter               = "errorMsgDuplicateParameter"
	msgKeyDuplicateParameterField          = "errorMsgDuplicateParameterField"
	msgKeyFontNotAvailable                 = "errorMsgFontNotAvailable"
	msgKeySectionBandNotOnSamePage         = "errorMsgSectionBandNotOnSamePage"
	msgKeySectionBandPageBreakNotAllowed   = "errorMsgSectionBandPageBreakNotAllowed"
	msgKeyGroupExpressionWithoutDataSource = "errorMsgGroupExpressionWithoutDataSource"
	msgKeyRepeatGroupHeaderAfterContent    = "errorMsgRepeatGroupHeaderAfterContent"
	msgKeyInvalidSpreadsheetDate           = "errorMsgInvalidSpreadsheetDate"
	msgKeyInvalidSpreadsheetNumber         = "errorMsgInvalidSpreadsheetNumber"
)

// Error is a user-facing report generation error. It carries a message key
// which can be localized by the caller, the id of the template object which
// caused the error and the affected field.
type Error struct {
	MsgKey   string // message key, e.g. "errorMsgInvalidSize"
	ObjectID int    // id of the report element or parameter, 0 if not applicable
	Field    string // field name of the object, e.g. "height"
	Info     string // additional info, e.g. an unresolved parameter name
	Context  string // free-form context, e.g. the offending expression
}

func (e *Error) Error() string {
	s := e.MsgKey
	if e.ObjectID != 0 {
		s += fmt.Sprintf(" (object %d", e.ObjectID)
		if e.Field != "" {
			s += ", field " + e.Field
		}
		s += ")"
	} else if e.Field != "" {
		s += " (field " + e.Field + ")"
	}
	if e.Info != "" {
		s += ": " + e.Info
	}
	return s
}

func newError(msgKey string, objectID int, field string) *Error {
	return &Error{MsgKey: msgKey, ObjectID: objectID, Field: field}
}

func newErrorInfo(msgKey string, objectID int, field, info string) *Error {
	return &Error{MsgKey: msgKey, ObjectID: objectID, Field: field, Info: info}
}

// InternalError reports a violated invariant inside the layout engine,
// e.g. popping the root context frame. It indicates a bug rather than a
// problem with the report template or data and is never localized.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "reportbro: internal error: " + e.Msg
}

// newInternalError logs the invariant violation and returns the error.
func newInternalError(format string, args ...any) *InternalError {
	err := &InternalError{Msg: fmt.Sprintf(format, args...)}
	log.Error().Msg(err.Msg)
	return err
}
