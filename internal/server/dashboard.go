package server

// DashboardHTML is the embedded single-page inspector for a live recording.
// It subscribes to /ws and renders each stats broadcast.
const DashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Rewind Inspector</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, monospace;
    background: #0d1117; color: #c9d1d9; padding: 20px;
  }
  h1 { color: #58a6ff; margin-bottom: 4px; font-size: 1.5em; }
  .subtitle { color: #8b949e; margin-bottom: 20px; font-size: 0.9em; }
  .status-bar {
    display: flex; gap: 20px; margin-bottom: 20px; padding: 12px 16px;
    background: #161b22; border: 1px solid #30363d; border-radius: 6px;
  }
  .status-item { display: flex; flex-direction: column; }
  .status-label { font-size: 0.75em; color: #8b949e; text-transform: uppercase; }
  .status-value { font-size: 1.1em; font-weight: 600; }
  .connected { color: #3fb950; }
  .disconnected { color: #f85149; }
  .stats {
    display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
    gap: 12px; margin-bottom: 20px;
  }
  .stat-card {
    background: #161b22; border: 1px solid #30363d; border-radius: 6px;
    padding: 16px; text-align: center;
  }
  .stat-number { font-size: 2em; font-weight: 700; color: #58a6ff; }
  .stat-label { font-size: 0.8em; color: #8b949e; margin-top: 4px; }
  table { width: 100%; border-collapse: collapse; background: #161b22; border: 1px solid #30363d; }
  th, td { text-align: left; padding: 8px 16px; border-bottom: 1px solid #21262d; font-size: 0.85em; }
  th { color: #58a6ff; }
  a { color: #d2a8ff; }
</style>
</head>
<body>
<h1>Rewind Inspector</h1>
<p class="subtitle"><span id="app">-</span> &middot; <a href="/api/export?pretty=1">download recording</a></p>

<div class="status-bar">
  <div class="status-item">
    <span class="status-label">Connection</span>
    <span class="status-value disconnected" id="conn-status">Disconnected</span>
  </div>
  <div class="status-item">
    <span class="status-label">Session</span>
    <span class="status-value" id="state">-</span>
  </div>
  <div class="status-item">
    <span class="status-label">Elapsed</span>
    <span class="status-value" id="elapsed">0s</span>
  </div>
</div>

<div class="stats">
  <div class="stat-card">
    <div class="stat-number" id="stat-events">0</div>
    <div class="stat-label">Events</div>
  </div>
  <div class="stat-card">
    <div class="stat-number" id="stat-snapshots">0</div>
    <div class="stat-label">Snapshots</div>
  </div>
  <div class="stat-card">
    <div class="stat-number" id="stat-duration">0s</div>
    <div class="stat-label">Duration</div>
  </div>
</div>

<table>
  <thead><tr><th>Kind</th><th>Count</th></tr></thead>
  <tbody id="kinds"></tbody>
</table>

<script>
function seconds(ns) { return (ns / 1e9).toFixed(2) + 's'; }

function render(msg) {
  document.getElementById('app').textContent = msg.app;
  document.getElementById('state').textContent = msg.state;
  document.getElementById('elapsed').textContent = (msg.elapsed_ms / 1000).toFixed(1) + 's';
  document.getElementById('stat-events').textContent = msg.stats.total_events;
  document.getElementById('stat-snapshots').textContent = msg.stats.total_snapshots;
  document.getElementById('stat-duration').textContent = seconds(msg.stats.duration);

  const body = document.getElementById('kinds');
  body.innerHTML = '';
  Object.keys(msg.by_kind || {}).sort().forEach(k => {
    const row = document.createElement('tr');
    const kind = document.createElement('td');
    kind.textContent = k;
    const count = document.createElement('td');
    count.textContent = msg.by_kind[k];
    row.append(kind, count);
    body.appendChild(row);
  });
}

function setConnected(ok) {
  const el = document.getElementById('conn-status');
  el.textContent = ok ? 'Connected' : 'Disconnected';
  el.className = 'status-value ' + (ok ? 'connected' : 'disconnected');
}

function connect() {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws');
  ws.onopen = () => setConnected(true);
  ws.onclose = () => { setConnected(false); setTimeout(connect, 2000); };
  ws.onmessage = (e) => render(JSON.parse(e.data));
}

fetch('/api/stats').then(r => r.json()).then(render);
connect();
</script>
</body>
</html>`
