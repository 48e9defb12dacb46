package reportbro

import "github.com/rs/zerolog"

// ReportOption configures a Report created with NewReport.
type ReportOption func(*Report)

// WithLogger enables diagnostic logging. Only internal errors are logged,
// regular report errors are returned to the caller.
func WithLogger(logger zerolog.Logger) ReportOption {
	return func(r *Report) { log = logger }
}

// WithTestData marks the payload as designer test data. This influences the
// error messages in case report generation fails due to invalid data and
// disables loading images from local file paths.
func WithTestData() ReportOption {
	return func(r *Report) { r.isTestData = true }
}

// WithAdditionalFonts makes non-standard TrueType fonts available so they
// can be embedded into the pdf file.
func WithAdditionalFonts(fonts ...AdditionalFont) ReportOption {
	return func(r *Report) { r.additionalFonts = append(r.additionalFonts, fonts...) }
}

// WithPageLimit sets the maximum number of pages for pdf reports. This can
// be used to avoid reports getting too big or taking too long to generate.
// A limit of 0 disables the check.
func WithPageLimit(pageLimit int) ReportOption {
	return func(r *Report) { r.pageLimit = pageLimit }
}

// WithRequestHeaders sets the request headers used when images are fetched
// by url. Some sites check for the existence of a user-agent header and do
// not return an image otherwise.
func WithRequestHeaders(headers map[string]string) ReportOption {
	return func(r *Report) { r.requestHeaders = headers }
}

// WithAllowLocalImage controls whether an image source may contain a path
// to an image file on the local file system.
func WithAllowLocalImage(allow bool) ReportOption {
	return func(r *Report) { r.allowLocalImage = allow }
}

// WithAllowExternalImage controls whether an image source may contain an
// external url. The image is downloaded on the fly during rendering.
func WithAllowExternalImage(allow bool) ReportOption {
	return func(r *Report) { r.allowExternalImage = allow }
}
