package main

// The embedded host page is a thin view of the Go view-model: it draws
// whatever /widget/state says and posts user events back. All widget
// logic (eligibility, gating, loading) lives server-side.
var widgetPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Chat Widget</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#eef1f5;min-height:100vh}
#nx-widget{position:fixed;z-index:10000;bottom:20px;right:20px}
#nx-widget.bottom-left{right:auto;left:20px}
#nx-widget.top-right{bottom:auto;top:20px}
#nx-widget.top-left{bottom:auto;right:auto;top:20px;left:20px}
#nx-toggle{width:60px;height:60px;border-radius:50%;border:none;color:#fff;font-size:24px;cursor:pointer;
  box-shadow:0 4px 20px rgba(0,0,0,.15);display:flex;align-items:center;justify-content:center}
#nx-panel{display:none;position:absolute;bottom:70px;right:0;width:380px;max-width:calc(100vw - 40px);
  height:520px;max-height:calc(100vh - 110px);background:#fff;border-radius:16px;overflow:hidden;
  box-shadow:0 8px 40px rgba(0,0,0,.18);flex-direction:column}
#nx-panel.open{display:flex}
#nx-header{color:#fff;padding:14px 16px;display:flex;align-items:center;justify-content:space-between}
#nx-header .info{display:flex;align-items:center;gap:10px}
#nx-header img{width:36px;height:36px;border-radius:50%;object-fit:cover}
#nx-header h3{font-size:15px;font-weight:600}
#nx-header .sub{font-size:11px;opacity:.8}
#nx-header button{background:rgba(255,255,255,.2);border:none;color:#fff;width:28px;height:28px;border-radius:6px;cursor:pointer;margin-left:6px}
#nx-privacy{background:#fff3cd;border:1px solid #ffeaa7;border-radius:8px;margin:14px;padding:12px;font-size:13px;color:#856404}
#nx-privacy .row{display:flex;align-items:center;gap:8px;margin-top:10px}
#nx-privacy button{margin-left:auto;background:#007bff;color:#fff;border:none;padding:6px 14px;border-radius:6px;cursor:pointer}
#nx-privacy button:disabled{background:#ccc;cursor:not-allowed}
#nx-msgs{flex:1;overflow-y:auto;padding:14px;background:#f8f9fa}
.nx-msg{margin-bottom:12px;display:flex}
.nx-msg.user{justify-content:flex-end}
.nx-bubble{max-width:80%;padding:10px 14px;border-radius:16px;font-size:14px;line-height:1.4;word-wrap:break-word}
.nx-msg.user .nx-bubble{color:#fff;border-bottom-right-radius:5px}
.nx-msg.bot .nx-bubble{background:#fff;border:1px solid #e9ecef;color:#333;border-bottom-left-radius:5px}
.nx-bubble.error{background:#ffe6e6;border-color:#ff9999;color:#d63384}
.nx-meta{font-size:11px;color:#6c757d;margin-top:3px}
.nx-reactions button{background:rgba(0,0,0,.05);border:none;border-radius:50%;width:28px;height:28px;cursor:pointer;margin-right:6px;margin-top:6px;opacity:.6}
.nx-reactions button.active{opacity:1}
.nx-reactions button.active.like{background:#22c55e}
.nx-reactions button.active.dislike{background:#ef4444}
.nx-reactions button:disabled{cursor:default;opacity:.35}
.nx-follow{background:#eef2ff;border:1px solid #c7d2fe;border-radius:10px;padding:8px 10px;margin-top:8px;font-size:13px;color:#4c1d95;cursor:pointer}
.nx-topics{display:flex;flex-wrap:wrap;gap:6px;margin-top:8px}
.nx-topic{background:#f0f9ff;border:1px solid #bae6fd;color:#0369a1;padding:4px 10px;border-radius:14px;font-size:12px;cursor:pointer}
#nx-typing{display:none;color:#6c757d;font-size:13px;padding:0 14px 8px}
#nx-starters{display:flex;flex-direction:column;gap:6px;padding:0 14px 10px}
.nx-starter{background:#fff;border:1px dashed #adb5bd;border-radius:10px;padding:8px 10px;font-size:13px;cursor:pointer;text-align:left}
#nx-input{display:flex;gap:10px;padding:12px 14px;border-top:1px solid #e9ecef;background:#fff}
#nx-input textarea{flex:1;border:1px solid #e9ecef;border-radius:18px;padding:10px 14px;font-size:14px;font-family:inherit;resize:none;max-height:90px}
#nx-send{width:40px;height:40px;border-radius:50%;border:none;color:#fff;cursor:pointer;font-size:16px}
#nx-send:disabled{background:#e9ecef !important;color:#6c757d;cursor:not-allowed}
#nx-actions{display:flex;gap:10px;padding:10px 14px;background:#f8f9fa;border-top:1px solid #eee}
#nx-actions button{flex:1;color:#fff;border:none;padding:10px;border-radius:8px;font-size:13px;cursor:pointer}
#nx-actions button:disabled{opacity:.5;cursor:not-allowed}
#nx-email{display:none;position:absolute;inset:0;background:rgba(0,0,0,.5);align-items:center;justify-content:center;z-index:10}
#nx-email.show{display:flex}
#nx-email form{background:#fff;border-radius:12px;padding:20px;width:90%;max-width:340px}
#nx-email label{display:block;font-size:13px;margin:10px 0 4px;color:#555}
#nx-email input,#nx-email textarea{width:100%;padding:9px;border:1px solid #ddd;border-radius:8px;font-size:13px;font-family:inherit}
#nx-email .buttons{display:flex;gap:10px;margin-top:14px}
#nx-email .buttons button{flex:1;padding:9px;border:none;border-radius:8px;cursor:pointer;font-size:13px}
#nx-email .status{font-size:13px;margin-top:8px;display:none;text-align:center}
</style>
</head>
<body>
<div id="nx-widget">
  <button id="nx-toggle" aria-label="Toggle chat">&#128172;</button>
  <div id="nx-panel">
    <div id="nx-header">
      <div class="info"><span id="nx-logo"></span><div><h3 id="nx-name"></h3><div class="sub">Educational only</div></div></div>
      <div><button id="nx-clear" title="Clear chat">&#128465;</button><button id="nx-close" title="Close chat">&#10005;</button></div>
    </div>
    <div id="nx-privacy">
      <p id="nx-privacy-text"></p>
      <p id="nx-privacy-link"></p>
      <div class="row">
        <input type="checkbox" id="nx-agree-check"><label for="nx-agree-check">I agree</label>
        <button id="nx-agree" disabled>I agree</button>
      </div>
    </div>
    <div id="nx-msgs"></div>
    <div id="nx-typing">typing&hellip;</div>
    <div id="nx-starters"></div>
    <div id="nx-input">
      <textarea id="nx-text" rows="1" placeholder="Type your message..."></textarea>
      <button id="nx-send">&#10148;</button>
    </div>
    <div id="nx-actions"></div>
    <div id="nx-email">
      <form id="nx-email-form">
        <h3>Send us an Email</h3>
        <label>Your Name*</label><input name="name" type="text">
        <label>Your Email*</label><input name="email" type="email">
        <label>Message*</label><textarea name="message" rows="4"></textarea>
        <div class="status" id="nx-email-status"></div>
        <div class="buttons">
          <button type="button" id="nx-email-cancel">Cancel</button>
          <button type="submit" id="nx-email-submit">Send Email</button>
        </div>
      </form>
    </div>
  </div>
</div>
<script>
(function(){
  'use strict';
  var model=null;
  var el=function(id){return document.getElementById(id)};
  function esc(s){var d=document.createElement('div');d.textContent=s;return d.innerHTML}
  function api(path,body){
    return fetch(path,{method:body?'POST':'GET',headers:{'Content-Type':'application/json'},
      body:body?JSON.stringify(body):undefined}).then(function(r){
        return r.json().then(function(j){if(!r.ok)throw j;return j});
      });
  }
  function brand(){return (model&&model.brand_colour)||'rgb(173, 216, 230)'}
  function render(m){
    model=m;
    var widget=el('nx-widget');
    widget.className=m.position||'bottom-right';
    var grad='linear-gradient(135deg,'+brand()+',#764ba2 100%)';
    el('nx-toggle').style.background=grad;
    el('nx-header').style.background=grad;
    el('nx-send').style.background=grad;
    el('nx-name').textContent=m.clinic_name||'';
    el('nx-logo').innerHTML=m.logo_url?'<img src="'+esc(m.logo_url)+'" alt="logo">':'&#129302;';
    el('nx-panel').classList.toggle('open',!!m.open);
    el('nx-toggle').innerHTML=m.open?'&#10005;':'&#128172;';

    var gated=!!m.privacy;
    el('nx-privacy').style.display=gated?'block':'none';
    el('nx-input').style.display=gated?'none':'flex';
    el('nx-actions').style.display=gated?'none':'flex';
    if(m.privacy){
      el('nx-privacy-text').textContent=m.privacy.text||'';
      el('nx-privacy-link').innerHTML=m.privacy.url?
        'See our <a href="'+esc(m.privacy.url)+'" target="_blank" rel="noopener noreferrer">Privacy Notice</a>.':'';
    }

    var msgs=el('nx-msgs');msgs.innerHTML='';
    (m.messages||[]).forEach(function(msg){
      var row=document.createElement('div');row.className='nx-msg '+msg.sender;
      var col=document.createElement('div');
      var b=document.createElement('div');b.className='nx-bubble'+(msg.is_error?' error':'');
      if(msg.sender==='user')b.style.background=grad;
      b.textContent=msg.text;col.appendChild(b);
      if(msg.follow_up_question){
        var f=document.createElement('div');f.className='nx-follow';
        f.textContent='💡 '+msg.follow_up_question;
        f.onclick=function(){compose({follow_up:msg.follow_up_question})};
        col.appendChild(f);
      }
      if(msg.suggested_topics&&msg.suggested_topics.length){
        var tt=document.createElement('div');tt.className='nx-topics';
        msg.suggested_topics.forEach(function(topic){
          var t=document.createElement('span');t.className='nx-topic';t.textContent=topic;
          t.onclick=function(){compose({topic:topic})};
          tt.appendChild(t);
        });
        col.appendChild(tt);
      }
      if(msg.show_reactions){
        var rr=document.createElement('div');rr.className='nx-reactions';
        ['like','dislike'].forEach(function(kind){
          var btn=document.createElement('button');
          btn.className=kind+(msg.reaction===kind?' active':'');
          btn.innerHTML=kind==='like'?'&#128077;':'&#128078;';
          btn.disabled=!msg.reactions_enabled;
          btn.onclick=function(){api('/widget/react',{id:msg.id,reaction:kind}).then(render).catch(function(){})};
          rr.appendChild(btn);
        });
        col.appendChild(rr);
      }
      var time=document.createElement('div');time.className='nx-meta';time.textContent=msg.time;
      col.appendChild(time);
      row.appendChild(col);msgs.appendChild(row);
    });
    el('nx-typing').style.display=m.typing?'block':'none';

    var st=el('nx-starters');st.innerHTML='';
    (m.starter_questions||[]).forEach(function(q){
      var btn=document.createElement('button');btn.className='nx-starter';btn.textContent=q;
      btn.disabled=!!m.typing;
      btn.onclick=function(){api('/widget/starter',{question:q}).then(render).catch(alertErr)};
      st.appendChild(btn);
    });

    var acts=el('nx-actions');acts.innerHTML='';
    (m.actions||[]).forEach(function(a){
      var btn=document.createElement('button');btn.textContent=a.label;btn.style.background=grad;
      btn.disabled=!a.enabled;
      btn.onclick=function(){
        api('/widget/cta',{label:a.label}).catch(function(){});
        if(a.kind==='book_now'&&a.url)window.open(a.url,'_blank');
        if(a.kind==='send_email')el('nx-email').classList.add('show');
      };
      acts.appendChild(btn);
    });

    el('nx-send').disabled=!!m.typing;
    el('nx-text').disabled=!!m.typing;
    setTimeout(function(){msgs.scrollTop=msgs.scrollHeight},50);
  }
  function alertErr(e){if(e&&e.error)alert(e.error)}
  function compose(body){
    api('/widget/compose',body).then(function(r){el('nx-text').value=r.input;el('nx-text').focus()}).catch(function(){});
  }
  function send(){
    var text=el('nx-text').value.trim();
    if(!text)return;
    el('nx-text').value='';
    api('/widget/send',{message:text}).then(render).catch(alertErr);
    api('/widget/state').then(render).catch(function(){});
  }
  el('nx-toggle').onclick=function(){api('/widget/toggle',{}).then(render).catch(function(){})};
  el('nx-close').onclick=function(){api('/widget/toggle',{}).then(render).catch(function(){})};
  el('nx-clear').onclick=function(){api('/widget/clear',{}).then(render).catch(function(){})};
  el('nx-send').onclick=send;
  el('nx-text').addEventListener('keypress',function(e){
    if(e.key==='Enter'&&!e.shiftKey){e.preventDefault();send()}
  });
  el('nx-agree-check').onchange=function(){el('nx-agree').disabled=!this.checked};
  el('nx-agree').onclick=function(){api('/widget/agree',{}).then(render).catch(function(){})};
  el('nx-email-cancel').onclick=function(){
    el('nx-email').classList.remove('show');
    el('nx-email-form').reset();
    el('nx-email-status').style.display='none';
  };
  el('nx-email-form').onsubmit=function(e){
    e.preventDefault();
    var f=e.target,status=el('nx-email-status');
    api('/widget/email',{name:f.name.value.trim(),email:f.email.value.trim(),message:f.message.value.trim()})
      .then(function(){
        status.textContent='✅ Email sent successfully!';status.style.color='#28a745';status.style.display='block';
        setTimeout(function(){el('nx-email-cancel').click()},2000);
      })
      .catch(function(err){
        status.textContent='❌ '+((err&&err.error)||'Failed to send email.');
        status.style.color='#dc3545';status.style.display='block';
      });
  };
  api('/widget/state').then(render).catch(function(){});
})();
</script>
</body>
</html>`
