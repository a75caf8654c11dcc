package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// indexHTML is the single dashboard page. It polls the JSON API; no template
// data is injected server-side.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Battery SOC monitor</title>
<style>
  body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; color: #222; }
  .soc { font-size: 3rem; font-weight: bold; }
  .low { color: #c0392b; }
  .ok { color: #27ae60; }
  table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
  td, th { border: 1px solid #ddd; padding: 4px 8px; text-align: left; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>Battery SOC monitor</h1>
<div id="soc" class="soc">—</div>
<div id="meta"></div>
<h2>Last 24 hours</h2>
<table>
  <thead><tr><th>Time</th><th>SOC %</th><th>PV W</th><th>Battery W</th></tr></thead>
  <tbody id="history"></tbody>
</table>
<script>
const fmt = (v) => v === null || v === undefined ? "—" : v;
async function refresh() {
  const st = await (await fetch("/api/v1/status")).json();
  const el = document.getElementById("soc");
  el.textContent = fmt(st.soc) + "%";
  el.className = "soc " + (st.alertState.status === "low" ? "low" : "ok");
  document.getElementById("meta").textContent =
    "alert: " + st.alertState.status +
    " | thresholds: " + st.threshold + "/" + st.resetThreshold +
    " | updated: " + (st.lastUpdateTime ? new Date(st.lastUpdateTime * 1000).toLocaleString() : "never");
  const hist = await (await fetch("/api/v1/history")).json();
  document.getElementById("history").innerHTML = (hist.items || []).slice(0, 100).map(s =>
    "<tr><td>" + new Date(s.ts * 1000).toLocaleString() + "</td><td>" + fmt(s.soc) +
    "</td><td>" + fmt(s.generation_power) + "</td><td>" + fmt(s.battery_power) + "</td></tr>"
  ).join("");
}
refresh();
setInterval(refresh, 30000);
</script>
</body>
</html>`

// @Summary      Dashboard page
// @Tags         system
// @Produce      html
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}
