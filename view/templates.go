package view

const pageTemplates = `
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Student Fee Tracker</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6fa;color:#222}
header{background:#4f46e5;color:#fff;padding:16px 24px}
main{padding:16px 24px}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{padding:8px;border-bottom:1px solid #eee;text-align:left}
.status-paid{color:#006600;font-weight:600}
.status-unpaid{color:#cc0000;font-weight:600}
.cards{display:flex;gap:12px;margin-bottom:16px}
.card{background:#fff;padding:12px 16px;border-radius:6px;flex:1}
.modal{display:none;position:fixed;inset:0;background:rgba(0,0,0,.4)}
.modal.show{display:flex;align-items:center;justify-content:center}
.modal-content{background:#fff;padding:20px;border-radius:8px;min-width:420px;max-height:90vh;overflow:auto}
.tag{display:inline-block;margin:3px;padding:4px 10px;border:1px solid #ccc;border-radius:14px;background:#fff;cursor:pointer}
.tag.selected{background:#4f46e5;color:#fff;border-color:#4f46e5}
.chip{display:inline-block;margin:3px;padding:3px 8px;background:#eef;border-radius:12px}
.toast{position:fixed;right:20px;bottom:20px;padding:10px 16px;border-radius:6px;color:#fff}
.toast.success{background:#16a34a}.toast.error{background:#dc2626}.toast.info{background:#2563eb}
</style>
</head>
<body hx-swap="none">
<header><h1>Student Fee Tracker</h1></header>
<main>
<div id="toast">{{index .Regions "toast"}}</div>
<div id="summary" class="cards">{{index .Regions "summary"}}</div>
<form id="filters" hx-post="/ui/search" hx-trigger="input changed from:#searchInput, change from:#monthFilter, change from:#statusFilter">
  <input id="searchInput" name="query" placeholder="Search by name, father or receipt" autocomplete="off">
  <select id="monthFilter" name="month">{{index .Regions "monthFilter"}}</select>
  <select id="statusFilter" name="status">
    <option value="">All Status</option>
    <option value="Paid">Paid</option>
    <option value="Not Paid">Not Paid</option>
  </select>
  <button type="button" hx-post="/ui/search/now" hx-include="#filters">Search</button>
  <button type="button" hx-post="/ui/clear-filters" hx-on::after-request="document.getElementById('filters').reset()">Clear</button>
  <button type="button" hx-post="/ui/modal/addModal/open">Add Record</button>
  <button type="button" hx-post="/ui/modal/bulkAddModal/open">Bulk Add</button>
  <button type="button" hx-post="/ui/modal/uploadModal/open">Upload Excel</button>
  <a href="/ui/download?filter=all">Download All</a>
  <a href="/ui/download?filter=paid">Download Paid</a>
  <a href="/ui/download?filter=unpaid">Download Unpaid</a>
</form>
<p id="recordCount">{{index .Regions "recordCount"}}</p>
<table>
<thead><tr><th>Student ID</th><th>Name</th><th>Father</th><th>Mobile</th><th>Month</th><th>Status</th><th>Receipt</th><th>Actions</th></tr></thead>
<tbody id="records">{{index .Regions "records"}}</tbody>
</table>
</main>
<div id="addModal">{{index .Regions "addModal"}}</div>
<div id="editModal">{{index .Regions "editModal"}}</div>
<div id="addMonthModal">{{index .Regions "addMonthModal"}}</div>
<div id="bulkAddModal">{{index .Regions "bulkAddModal"}}</div>
<div id="uploadModal">{{index .Regions "uploadModal"}}</div>
<div id="profileModal">{{index .Regions "profileModal"}}</div>
<div id="editProfileModal">{{index .Regions "editProfileModal"}}</div>
</body>
</html>
{{end}}

{{define "swaps"}}{{range .}}<div id="{{.ID}}" hx-swap-oob="innerHTML">{{.HTML}}</div>
{{end}}{{end}}

{{define "toast"}}{{if .Message}}<div class="toast {{.Kind}}" hx-get="/ui/noop" hx-trigger="load delay:3s" hx-target="this" hx-swap="delete">{{.Message}}</div>{{end}}{{end}}

{{define "summary"}}
<div class="card"><small>Total Records</small><h2>{{.Total}}</h2></div>
<div class="card"><small>Paid</small><h2 class="status-paid">{{.Paid}}</h2></div>
<div class="card"><small>Not Paid</small><h2 class="status-unpaid">{{.Unpaid}}</h2></div>
{{end}}

{{define "monthFilter"}}<option value="">All Months</option>{{range .}}<option value="{{.}}">{{.}}</option>{{end}}{{end}}

{{define "recordCount"}}Showing {{.}} record(s){{end}}

{{define "records"}}{{if not .}}<tr><td colspan="8">No records found</td></tr>{{end}}{{range .}}
<tr>
<td>{{.StudentID}}</td>
<td><a href="#" hx-get="/ui/profile/{{path (key .StudentName .FatherName)}}">{{.StudentName}}</a></td>
<td>{{.FatherName}}</td>
<td>{{.MobileNumber}}</td>
<td>{{.Month}}</td>
<td>{{if paid .FeeStatus}}<span class="status-paid">Paid</span>{{else}}<span class="status-unpaid">{{.FeeStatus}}</span>{{end}}</td>
<td>{{if .ReceiptNumber}}<a href="#" hx-get="/ui/receipt/{{path .ReceiptNumber}}">{{.ReceiptNumber}}</a>{{else}}-{{end}}</td>
<td>
<form hx-post="/ui/modal/editModal/open" style="display:inline">
<input type="hidden" name="student_id" value="{{.StudentID}}"><input type="hidden" name="student_name" value="{{.StudentName}}">
<input type="hidden" name="father_name" value="{{.FatherName}}"><input type="hidden" name="mobile_number" value="{{.MobileNumber}}">
<input type="hidden" name="month" value="{{.Month}}"><input type="hidden" name="fee_status" value="{{.FeeStatus}}">
<input type="hidden" name="receipt_number" value="{{.ReceiptNumber}}"><button>Edit</button>
</form>
{{if not (paid .FeeStatus)}}<form hx-post="/ui/mark-paid" style="display:inline">
<input type="hidden" name="student_name" value="{{.StudentName}}"><input type="hidden" name="father_name" value="{{.FatherName}}">
<input type="hidden" name="month" value="{{.Month}}"><button>Mark Paid</button>
</form>{{end}}
<form hx-post="/ui/modal/addMonthModal/open" style="display:inline">
<input type="hidden" name="student_id" value="{{.StudentID}}"><input type="hidden" name="student_name" value="{{.StudentName}}">
<input type="hidden" name="father_name" value="{{.FatherName}}"><input type="hidden" name="mobile_number" value="{{.MobileNumber}}">
<button>Add Month</button>
</form>
<form hx-post="/ui/submit/delete" hx-confirm="Delete the {{.Month}} record of {{.StudentName}}?" style="display:inline">
<input type="hidden" name="student_name" value="{{.StudentName}}"><input type="hidden" name="father_name" value="{{.FatherName}}">
<input type="hidden" name="month" value="{{.Month}}"><button>Delete</button>
</form>
</td>
</tr>{{end}}{{end}}

{{define "monthTags"}}{{range .}}<button type="button" class="tag{{if .Selected}} selected{{end}}" hx-post="/ui/toggle/{{.Set}}" name="value" value="{{.Label}}">{{.Label}}</button>{{end}}{{end}}

{{define "studentChips"}}{{if .}}<p>{{len .}} student(s) selected
<button type="button" hx-post="/ui/students/clear">Clear</button></p>{{end}}{{range .}}
<span class="chip">{{.Name}} <small>{{.Father}}</small>
<button type="button" hx-post="/ui/students/remove" name="key" value="{{.Key}}">&times;</button></span>{{end}}{{end}}

{{define "suggestions"}}{{if not .Items}}<div class="no-suggestions">No students found</div>{{end}}{{range .Items}}
<button type="button" class="suggestion{{if .Selected}} selected{{end}}" hx-post="/ui/toggle/selectedStudents" name="value" value="{{.Student.Key}}">
<strong>{{initials .Student.Name}}</strong> {{.Student.Name}} <small>{{.Student.Father}}</small>{{if .Selected}} &#10003;{{end}}
</button>{{end}}{{if gt .More 0}}<p><small>{{.More}} more, keep typing to narrow down</small></p>{{end}}{{end}}

{{define "pastePreview"}}{{if .}}{{.}} student(s) detected{{end}}{{end}}

{{define "profile"}}{{with .}}
<h3>{{.Student.Name}}</h3>
<p>Father: {{.Student.FatherName}}</p>
<p>Months: {{.Student.TotalMonths}} &middot; Paid: {{.Student.PaidMonths}} &middot; Not Paid: {{.Student.UnpaidMonths}}</p>
{{if .Records}}{{with index .Records 0}}<form hx-post="/ui/modal/editProfileModal/open">
<input type="hidden" name="student_id" value="{{.StudentID}}"><input type="hidden" name="student_name" value="{{.StudentName}}">
<input type="hidden" name="father_name" value="{{.FatherName}}"><input type="hidden" name="mobile_number" value="{{.MobileNumber}}">
<button>Edit Info</button>
</form>{{end}}{{end}}
<table><thead><tr><th>Month</th><th>Status</th><th>Receipt</th></tr></thead><tbody>
{{range .Records}}<tr><td>{{.Month}}</td><td>{{if paid .FeeStatus}}<span class="status-paid">Paid</span>{{else}}<span class="status-unpaid">{{.FeeStatus}}</span>{{end}}</td><td>{{or .ReceiptNumber "-"}}</td></tr>{{end}}
</tbody></table>{{end}}{{end}}

{{define "modalHead"}}<div class="modal{{if .Open}} show{{end}}"><div class="modal-content">
<button type="button" style="float:right" hx-post="/ui/modal/{{.ID}}/close">&times;</button>{{end}}

{{define "monthSelect"}}<select name="month"><option value="">Select month</option>{{range .}}<option value="{{.}}">{{.}}</option>{{end}}</select>{{end}}

{{define "modal-addModal"}}{{template "modalHead" .}}
<h3>Add Record</h3>
<form hx-post="/ui/submit/add">
<input name="student_id" placeholder="Student ID">
<input name="student_name" placeholder="Student name">
<input name="father_name" placeholder="Father name">
<input name="mobile_number" placeholder="Mobile number">
{{template "monthSelect" .Months}}
<select name="fee_status"><option value="Not Paid">Not Paid</option><option value="Paid">Paid</option></select>
<input name="receipt_number" placeholder="Receipt number">
<button>Save</button>
</form></div></div>{{end}}

{{define "modal-editModal"}}{{template "modalHead" .}}
<h3>Edit {{.Subject.StudentName}} &middot; {{.Subject.Month}}</h3>
<form hx-post="/ui/submit/update">
<input type="hidden" name="student_name" value="{{.Subject.StudentName}}">
<input type="hidden" name="father_name" value="{{.Subject.FatherName}}">
<input type="hidden" name="month" value="{{.Subject.Month}}">
<select name="fee_status">
<option value="Paid"{{if paid .Subject.FeeStatus}} selected{{end}}>Paid</option>
<option value="Not Paid"{{if not (paid .Subject.FeeStatus)}} selected{{end}}>Not Paid</option>
</select>
<input name="receipt_number" value="{{.Subject.ReceiptNumber}}" placeholder="Receipt number">
<button>Update</button>
</form></div></div>{{end}}

{{define "modal-addMonthModal"}}{{template "modalHead" .}}
<h3>Add Months for {{.Subject.StudentName}}</h3>
<div id="addMonthTags">{{/* filled by region swap */}}</div>
<form hx-post="/ui/submit/add-months">
<input type="hidden" name="student_id" value="{{.Subject.StudentID}}">
<input type="hidden" name="student_name" value="{{.Subject.StudentName}}">
<input type="hidden" name="father_name" value="{{.Subject.FatherName}}">
<input type="hidden" name="mobile_number" value="{{.Subject.MobileNumber}}">
<select name="fee_status"><option value="Not Paid">Not Paid</option><option value="Paid">Paid</option></select>
<button>Add Months</button>
</form></div></div>{{end}}

{{define "modal-bulkAddModal"}}{{template "modalHead" .}}
<h3>Bulk Add</h3>
<h4>Existing students</h4>
<div id="bulkMonthTags"></div>
<input name="q" placeholder="Search students" hx-get="/ui/suggestions" hx-trigger="input changed">
<button type="button" hx-post="/ui/students/select-all">Select All</button>
<div id="selectedStudents"></div>
<div id="studentSuggestions"></div>
<form hx-post="/ui/submit/bulk-existing">
<select name="fee_status"><option value="Not Paid">Not Paid</option><option value="Paid">Paid</option></select>
<button>Add for Selected</button>
</form>
<h4>New students</h4>
<form hx-post="/ui/submit/bulk-new">
<textarea name="paste_data" rows="8" placeholder="Name[TAB]Father Name" hx-post="/ui/paste-preview" hx-trigger="input changed delay:200ms"></textarea>
<p id="pastePreview"></p>
{{template "monthSelect" .Months}}
<select name="fee_status"><option value="Not Paid">Not Paid</option><option value="Paid">Paid</option></select>
<button>Add Students</button>
</form></div></div>{{end}}

{{define "modal-uploadModal"}}{{template "modalHead" .}}
<h3>Upload Excel</h3>
<form hx-post="/ui/upload" hx-encoding="multipart/form-data">
<input type="file" name="file" accept=".xlsx,.xls">
<button>Upload</button>
</form>
<p><small>Uploading replaces all existing records.</small></p>
</div></div>{{end}}

{{define "modal-profileModal"}}{{template "modalHead" .}}
<div id="profile"></div>
</div></div>{{end}}

{{define "modal-editProfileModal"}}{{template "modalHead" .}}
<h3>Edit Student Info</h3>
<form hx-post="/ui/submit/profile-edit">
<input type="hidden" name="original_name" value="{{.Subject.StudentName}}">
<input type="hidden" name="original_father" value="{{.Subject.FatherName}}">
<input name="student_id" value="{{.Subject.StudentID}}" placeholder="Student ID">
<input name="student_name" value="{{.Subject.StudentName}}" placeholder="Student name">
<input name="father_name" value="{{.Subject.FatherName}}" placeholder="Father name">
<input name="mobile_number" value="{{.Subject.MobileNumber}}" placeholder="Mobile number">
<button>Save</button>
</form></div></div>{{end}}
`
