// Package web holds the single-page browser front end.
package web

// Index is served at "/"
var Index = []byte(indexHTML)

const indexHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>ZPL to PDF</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;color:#222;line-height:1.5}
header,footer{background:#fff;border-bottom:1px solid #e5e7eb;padding:14px 20px}
footer{border-top:1px solid #e5e7eb;border-bottom:none;text-align:center;font-size:12px;color:#666}
header h1{font-size:16px}header p{font-size:12px;color:#666}
main{max-width:900px;margin:0 auto;padding:24px 16px}
.card{background:#fff;border:1px solid #e5e7eb;border-radius:8px;padding:20px}
.row{display:flex;gap:8px;align-items:center;justify-content:space-between;margin-bottom:10px;flex-wrap:wrap}
.btn{display:inline-flex;align-items:center;gap:6px;padding:7px 14px;border-radius:6px;border:1px solid #d1d5db;background:#fff;cursor:pointer;font-size:13px;text-decoration:none;color:#222}
.btn-primary{background:#4f46e5;border-color:#4f46e5;color:#fff}
.btn:disabled{opacity:.5;cursor:not-allowed}
textarea{width:100%;height:380px;resize:none;border:1px solid #d1d5db;border-radius:8px;padding:14px;font-family:ui-monospace,monospace;font-size:13px;background:#fafafa}
.drop{position:relative}
.hint{position:absolute;inset:0;display:flex;align-items:center;justify-content:center;color:#9ca3af;pointer-events:none;font-size:14px}
.error{border-color:#fca5a5;background:#fef2f2;text-align:center}
.spinner{width:48px;height:48px;border:4px solid #e5e7eb;border-top-color:#4f46e5;border-radius:50%;animation:spin 1s linear infinite;margin:0 auto 16px}
@keyframes spin{to{transform:rotate(360deg)}}
iframe{width:100%;height:600px;border:1px solid #e5e7eb;border-radius:8px;background:#fff}
.hidden{display:none}
</style>
</head>
<body>
<header><h1>ZPL to PDF</h1><p>Converta ZPL para PDF em segundos</p></header>
<main>
  <section id="view-input">
    <div class="row">
      <label for="zpl"><strong>ZPL Code</strong></label>
      <div>
        <button class="btn hidden" id="clear" type="button">Limpar</button>
        <button class="btn" id="pick" type="button">Upload arquivo</button>
      </div>
    </div>
    <input id="file" type="file" accept=".zpl,.txt,.prn" class="hidden" aria-label="Upload ZPL file">
    <div class="drop" id="drop">
      <div class="hint" id="hint">Cole seu ZPL aqui ou arraste um arquivo</div>
      <textarea id="zpl" spellcheck="false"></textarea>
    </div>
    <div class="row" style="justify-content:flex-end;margin-top:12px">
      <button class="btn btn-primary" id="convert" type="button" disabled>Converter para PDF &rarr;</button>
    </div>
  </section>

  <section id="view-loading" class="card hidden" style="text-align:center;padding:48px">
    <div class="spinner"></div><p id="loading-msg">Processando ZPL...</p>
  </section>

  <section id="view-preview" class="hidden">
    <div id="preview-loading" class="card" style="text-align:center"><div class="spinner"></div>Carregando preview do PDF...</div>
    <div id="preview-failed" class="card error hidden">
      <p>Não foi possível carregar o preview do PDF.</p>
      <div class="row" style="justify-content:center;margin-top:12px">
        <button class="btn reset" type="button">Nova conversão</button>
        <a class="btn btn-primary" id="direct" target="_blank" rel="noopener noreferrer">Abrir link direto</a>
      </div>
    </div>
    <div id="preview-ready" class="hidden">
      <div class="row">
        <strong>PDF gerado com sucesso</strong>
        <div>
          <button class="btn reset" type="button">Nova conversão</button>
          <a class="btn" id="open" target="_blank" rel="noopener noreferrer">Abrir em nova aba</a>
          <a class="btn btn-primary" id="download" download="label.pdf">Download PDF</a>
        </div>
      </div>
      <iframe id="frame" title="PDF Preview"></iframe>
    </div>
  </section>

  <section id="view-error" class="card error hidden">
    <h2 style="font-size:16px">Erro na conversão</h2>
    <p id="error-msg" style="margin:6px 0 14px;color:#555"></p>
    <button class="btn reset" type="button">Voltar e tentar novamente</button>
  </section>
</main>
<footer>Envie seu ZPL como texto ou arquivo. O PDF é gerado instantaneamente.</footer>
<script>
(function () {
  var $ = function (id) { return document.getElementById(id); };
  var s = { state: "input", content: "", pdfUrl: null, error: "", blobUrl: null, gen: 0 };
  var loadingMsgs = ["Processando ZPL...", "Gerando etiqueta...", "Convertendo para PDF...", "Quase pronto..."];
  var ticker = null;

  function releaseBlob() {
    if (s.blobUrl) { URL.revokeObjectURL(s.blobUrl); s.blobUrl = null; }
  }

  function show(id, on) { $(id).classList.toggle("hidden", !on); }

  function render() {
    ["input", "loading", "preview", "error"].forEach(function (v) { show("view-" + v, s.state === v); });
    $("convert").disabled = s.content.trim() === "";
    show("clear", s.content !== "");
    show("hint", s.content === "");
    $("error-msg").textContent = s.error;
    if (s.state === "loading" && !ticker) {
      var i = 0;
      ticker = setInterval(function () { i = (i + 1) % loadingMsgs.length; $("loading-msg").textContent = loadingMsgs[i]; }, 1800);
    } else if (s.state !== "loading" && ticker) {
      clearInterval(ticker); ticker = null;
    }
  }

  function setContent(text) { s.content = text; $("zpl").value = text; render(); }

  function readFile(file) {
    if (!file) return;
    var reader = new FileReader();
    reader.onload = function (e) { setContent(e.target.result); };
    reader.readAsText(file);
  }

  function previewStatus(status) {
    show("preview-loading", status === "loading");
    show("preview-failed", status === "failed");
    show("preview-ready", status === "ready");
  }

  function loadPreview() {
    var gen = ++s.gen, pdfUrl = s.pdfUrl;
    previewStatus("loading");
    $("direct").href = pdfUrl;
    fetch("/api/pdf-proxy?url=" + encodeURIComponent(pdfUrl))
      .then(function (r) { if (!r.ok) throw new Error("Failed to fetch PDF"); return r.blob(); })
      .then(function (b) {
        if (gen !== s.gen) return;
        releaseBlob();
        s.blobUrl = URL.createObjectURL(b);
        $("frame").src = $("open").href = $("download").href = s.blobUrl;
        previewStatus("ready");
      })
      .catch(function () { if (gen === s.gen) previewStatus("failed"); });
  }

  function submit() {
    if (s.state !== "input" || !s.content.trim()) return;
    s.state = "loading"; s.error = ""; render();
    var gen = ++s.gen;
    fetch("/api/convert", { method: "POST", headers: { "Content-Type": "text/plain" }, body: s.content })
      .then(function (r) {
        return r.json().catch(function () { return {}; }).then(function (data) {
          if (!r.ok) throw new Error(data.error || "Falha na conversão");
          if (!data.pdfUrl) throw new Error("Erro desconhecido. Tente novamente.");
          return data;
        });
      })
      .then(function (data) {
        if (gen !== s.gen) return;
        if (data.pdfUrl !== s.pdfUrl) releaseBlob();
        s.pdfUrl = data.pdfUrl; s.state = "preview"; render(); loadPreview();
      })
      .catch(function (err) {
        if (gen !== s.gen) return;
        s.error = err && err.message ? err.message : "Erro desconhecido. Tente novamente.";
        s.state = "error"; render();
      });
  }

  function reset() {
    s.gen++;
    releaseBlob();
    $("frame").removeAttribute("src");
    s.state = "input"; s.pdfUrl = null; s.error = "";
    render();
  }

  $("zpl").addEventListener("input", function (e) { s.content = e.target.value; render(); });
  $("clear").addEventListener("click", function () { setContent(""); });
  $("pick").addEventListener("click", function () { $("file").click(); });
  $("file").addEventListener("change", function (e) { readFile(e.target.files[0]); e.target.value = ""; });
  $("drop").addEventListener("dragover", function (e) { e.preventDefault(); });
  $("drop").addEventListener("drop", function (e) { e.preventDefault(); readFile(e.dataTransfer.files[0]); });
  $("convert").addEventListener("click", submit);
  Array.prototype.forEach.call(document.querySelectorAll(".reset"), function (b) { b.addEventListener("click", reset); });
  window.addEventListener("pagehide", releaseBlob);
  render();
})();
</script>
</body>
</html>
`
