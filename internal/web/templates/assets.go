package templates

import (
	"maps"
	"slices"
)

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

const styles = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f7f7f8; color: #222; }
main { max-width: 1100px; margin: 0 auto; padding: 1.5rem; }
section { background: #fff; border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
table { border-collapse: collapse; font-size: 0.9rem; }
th, td { border: 1px solid #e3e3e3; padding: 0.25rem 0.5rem; text-align: left; }
label { margin-right: 0.75rem; }
.alert { background: #fdecea; border: 1px solid #f5c2c0; color: #8a1c1c; padding: 0.75rem; border-radius: 6px; margin: 1rem 0; }
.hint { color: #666; font-size: 0.9rem; }
.scroll { overflow-x: auto; }
`

// dashboardScript drives the chart and save forms of the dashboard page.
const dashboardScript = `
(function () {
  const form = document.getElementById('chart-form');
  const status = document.getElementById('chart-status');
  const list = document.getElementById('dashboards');
  let chart = null;

  function query() {
    return {
      chart_type: form.chart_type.value,
      x_col: form.x_col.value,
      y_col: form.y_col.value,
      agg: form.agg.value,
    };
  }

  form.addEventListener('submit', async function (e) {
    e.preventDefault();
    const resp = await fetch('/generate_chart', { method: 'POST', body: new FormData(form) });
    const data = await resp.json();
    if (data.error) {
      status.textContent = data.error;
      return;
    }
    status.textContent = data.labels.length === 0 ? 'Nothing to plot for this selection.' : '';
    if (chart) {
      chart.destroy();
    }
    const q = query();
    chart = new Chart(document.getElementById('chart'), {
      type: q.chart_type,
      data: {
        labels: data.labels,
        datasets: [{ label: q.y_col || q.x_col, data: data.values }],
      },
    });
  });

  async function refresh() {
    const resp = await fetch('/list_dashboards');
    const data = await resp.json();
    list.replaceChildren();
    for (const name of data.dashboards || []) {
      const li = document.createElement('li');
      const a = document.createElement('a');
      a.href = '/api/dashboards/' + encodeURIComponent(name);
      a.textContent = name;
      li.appendChild(a);
      list.appendChild(li);
    }
  }

  document.getElementById('save-form').addEventListener('submit', async function (e) {
    e.preventDefault();
    const body = new FormData();
    body.append('name', e.target.name.value);
    body.append('config', JSON.stringify(Object.assign({ handle: form.handle.value }, query())));
    const resp = await fetch('/save_dashboard', { method: 'POST', body: body });
    const data = await resp.json();
    status.textContent = data.error ? data.error : 'Saved to ' + data.path;
    refresh();
  });

  refresh();
})();
`
