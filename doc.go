// Package reportflow lays out banded reports against data records and
// renders the pages as HTML, PDF, PNG or YAML.
//
// # Quick Start
//
// Parse a template, create a renderer, render, and close when done:
//
//	report, err := reportflow.ParseReport(templateYAML)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := reportflow.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	result, err := r.Render(ctx, reportflow.Input{
//	    Report:  report,
//	    Records: records,
//	    Format:  reportflow.OutputPDF,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("sales.pdf", result.PDF, 0644)
//
// # Layout
//
// A Report holds bands: page header, report header, detail, report
// footer and page footer. Each band is a Section of rows; each row holds
// text and data items placed in points relative to the row.
//
// Paginate drives the layout:
//
//  1. The Navigator sorts and optionally groups the records.
//  2. A DetailConverter fills each detail row from the current record,
//     lays it out (growing text that wraps), flattens it into an
//     ExportContainer and evaluates "=expr" texts.
//  3. When the next row does not fit, ForcePageBreak emits PageFull with
//     the page's elements and starts a new page at the top of the body.
//  4. Page header and footer rows are stamped on every finished page.
//
// With a GroupedRow in the detail, each group renders its header row,
// its records through a child navigator, and its GroupFooter. A
// GroupedRow with PageBreakOnGroupChange starts every group but the last
// on a new page.
//
// The Converter can also be driven directly with custom DataNavigator,
// Layouter and Evaluator implementations; its signals report page, group
// and row transitions.
//
// # Expressions
//
// Text starting with "=" is JavaScript evaluated per row:
//
//	=Fields.qty * Fields.price
//	=Sum("amount")          // current group, or all records
//	=Total("amount")        // all records
//	="Page " + PageNumber
//	=Param("title")
//	=Today("DD/MM/YYYY")
//	=FormatDate(Fields.shipped, "long")
//
// # Parallel Processing
//
// A Renderer is not safe for concurrent use. For batches, use
// RendererPool to manage several renderers, each with its own browser:
//
//	pool := reportflow.NewRendererPool(4, reportflow.WithStyle("compact"))
//	defer pool.Close()
//
//	r, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(r)
//	result, err := r.Render(ctx, input)
//
// A Report is mutated while it is laid out. Parse one per goroutine.
//
// # Custom Assets
//
// Override or add HTML styles with WithAssetPath:
//
//	assets/
//	└── styles/
//	    └── brand.css
//
//	r, err := reportflow.NewRenderer(
//	    reportflow.WithAssetPath("/path/to/assets"),
//	    reportflow.WithStyle("brand"),
//	)
package reportflow
