package v1

import (
	"html/template"
	"net/http"
)

var (
	uploadPage  = template.Must(template.New("upload").Parse(uploadPageHTML))
	galleryPage = template.Must(template.New("gallery").Parse(galleryPageHTML))
)

func (h *ImagesHandler) IndexPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = uploadPage.Execute(w, nil)
}

func (h *BrowserHandler) GalleryPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = galleryPage.Execute(w, nil)
}

const uploadPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Image Description App</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
    <style>
        body { background: #f8f9fa; }
        #preview { max-width: 100%; max-height: 320px; border-radius: 0.5rem; }
    </style>
</head>
<body>
<div class="container py-4">
    <h1 class="mb-2 text-primary">Image Description App</h1>
    <p class="text-muted">Upload an image and get an AI-generated description.</p>
    <div class="row g-4">
        <div class="col-md-6">
            <div class="card shadow-sm"><div class="card-body">
                <input class="form-control mb-3" type="file" id="image-input" accept="image/*">
                <img id="preview" class="mb-3 d-none">
                <button class="btn btn-primary" id="process-btn">Process Image</button>
            </div></div>
        </div>
        <div class="col-md-6">
            <div class="card shadow-sm"><div class="card-body">
                <label class="form-label">Image Description</label>
                <textarea class="form-control mb-3" id="description" rows="6" readonly></textarea>
                <label class="form-label">Additional Notes (Optional)</label>
                <textarea class="form-control mb-3" id="note" rows="2"></textarea>
                <button class="btn btn-success" id="approve-btn" disabled>&#10003; Approve</button>
                <button class="btn btn-danger" id="reject-btn" disabled>&#10007; Reject</button>
                <div class="alert alert-info mt-3 d-none" id="status"></div>
            </div></div>
        </div>
    </div>
    <a class="d-inline-block mt-4" href="/gallery">Browse stored images &rarr;</a>
</div>
<script>
let requestID = "";

const show = (msg) => {
    const el = document.getElementById("status");
    el.textContent = msg;
    el.classList.remove("d-none");
};

document.getElementById("image-input").addEventListener("change", (e) => {
    const file = e.target.files[0];
    if (!file) return;
    const preview = document.getElementById("preview");
    preview.src = URL.createObjectURL(file);
    preview.classList.remove("d-none");
});

document.getElementById("process-btn").addEventListener("click", async () => {
    const file = document.getElementById("image-input").files[0];
    if (!file) { show("Please upload an image or take a photo."); return; }

    const form = new FormData();
    form.append("image", file);

    show("Processing...");
    const resp = await fetch("/api/v1/images", { method: "POST", body: form });
    const body = await resp.json();
    if (!resp.ok) { show(body.error); return; }

    requestID = body.request_id;
    document.getElementById("description").value = body.description;
    document.getElementById("approve-btn").disabled = false;
    document.getElementById("reject-btn").disabled = false;
    show("Review the description and approve or reject it.");
});

const sendFeedback = async (approved) => {
    const resp = await fetch("/api/v1/images/" + requestID + "/feedback", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({ approved: approved, note: document.getElementById("note").value }),
    });
    const body = await resp.json();
    show(resp.ok ? body.message : body.error);
    if (resp.ok) {
        document.getElementById("approve-btn").disabled = true;
        document.getElementById("reject-btn").disabled = true;
    }
};

document.getElementById("approve-btn").addEventListener("click", () => sendFeedback(true));
document.getElementById("reject-btn").addEventListener("click", () => sendFeedback(false));
</script>
</body>
</html>
`

const galleryPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Image Browser</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
    <style>
        body { background: #f8f9fa; }
        .img-thumb { max-width: 80px; max-height: 80px; border-radius: 0.5rem; }
        .desc-cell { min-width: 350px; max-width: 500px; white-space: pre-line; }
        .filename-cell { max-width: 120px; font-size: 0.85em; color: #555; word-break: break-all; }
    </style>
</head>
<body>
<div class="container py-4">
    <h1 class="mb-4 text-primary">Image Browser</h1>
    <p>
        <a class="btn btn-outline-secondary btn-sm" href="/api/v1/export">Export CSV</a>
        <a class="btn btn-outline-secondary btn-sm" href="/api/v1/report">Export PDF</a>
    </p>
    <div class="card shadow-sm"><div class="card-body">
        <table class="table table-hover align-middle" id="images-table">
            <thead class="table-light"><tr>
                <th>Thumbnail</th><th>File Name</th><th>Description</th>
                <th>Note</th><th>Status</th><th>Timestamp</th>
            </tr></thead>
            <tbody></tbody>
        </table>
    </div></div>
</div>
<script>
fetch("/images").then(r => r.json()).then(images => {
    const tbody = document.querySelector("#images-table tbody");
    images.forEach(img => {
        const status = img.approved === true
            ? '<span class="badge bg-success">Approved</span>'
            : (img.approved === false
                ? '<span class="badge bg-danger">Rejected</span>'
                : '<span class="badge bg-secondary">Pending</span>');
        const row = document.createElement("tr");
        row.innerHTML =
            '<td><img class="img-thumb" src="' + img.url + '"></td>' +
            '<td class="filename-cell">' + img.name + '</td>' +
            '<td class="desc-cell">' + img.description + '</td>' +
            '<td>' + img.note + '</td>' +
            '<td>' + status + '</td>' +
            '<td>' + img.timestamp + '</td>';
        tbody.appendChild(row);
    });
});
</script>
</body>
</html>
`
