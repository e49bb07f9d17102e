// Package authpdf exports an authenticated web page to PDF with Chrome.
//
// # Quick Start
//
// Create an exporter and run one export:
//
//	exp, err := authpdf.NewExporter(authpdf.WithHeadless(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := exp.Export(ctx, authpdf.Request{
//	    URL:           "https://example.atlassian.net/wiki/spaces/OPS/pages/42",
//	    Authorization: "Basic dXNlcjp0b2tlbg==",
//	    OutputPrefix:  "ops-runbook",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.PDFPath) // ops-runbook.pdf
//
// # Export Sequence
//
// Each Export owns one browser for its whole lifetime:
//
//  1. Launch Chrome (visible unless WithHeadless(true))
//  2. Open one page
//  3. Send Authorization and "X-Atlassian-Token: no-check" on every request
//  4. Report failed sub-requests through the Reporter
//  5. Navigate and wait until at most 2 requests are pending for 500ms
//  6. Write a full-page PNG to debug-screenshot.png
//  7. Print the page to <prefix>.pdf: A2 landscape, backgrounds, 10mm margins
//  8. Close the browser, whatever happened before
//
// # Engines
//
// Two browser automation backends are available. EngineRod (default) uses
// go-rod and downloads Chromium on first run when none is installed.
// EngineChromedp uses chromedp and requires a local Chrome.
//
//	exp, err := authpdf.NewExporter(authpdf.WithEngine(authpdf.EngineChromedp))
//
// # Errors
//
// Export returns *StageError values. Use errors.Is with the sentinel errors
// (ErrNavigation, ErrPDFGeneration, ...) to classify failures, and
// StageError.Stage to see how far the export got.
package authpdf
